package api

import (
    "net/http"
    "time"

    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// TripEventsWSHandler streams a trip's event feed over WebSocket for
// dashboards that cannot hold SSE connections. Each broker event is
// written as one JSON message.
func (s *Server) TripEventsWSHandler(w http.ResponseWriter, r *http.Request, tripID string) {
    p := s.getPrincipal(r)
    if _, err := s.Store.GetTrip(r.Context(), p.Account, tripID); err != nil {
        writeProblem(w, http.StatusNotFound, "Trip not found", err.Error(), r.URL.Path)
        return
    }
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer func() { _ = conn.Close() }()

    conn.SetReadLimit(1 << 20)
    _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
    conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

    ch := s.Broker.Subscribe(tripID)
    defer s.Broker.Unsubscribe(tripID, ch)

    done := make(chan struct{})
    // Reader goroutine: keeps pong handling alive and detects disconnect.
    go func() {
        defer close(done)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    ping := time.NewTicker(20 * time.Second)
    defer ping.Stop()
    for {
        select {
        case <-done:
            return
        case <-r.Context().Done():
            return
        case evt := <-ch:
            _ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
            if err := conn.WriteJSON(evt); err != nil {
                return
            }
        case <-ping.C:
            _ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
            if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
