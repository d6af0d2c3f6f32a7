// Package main runs a demo WebSocket client for trip events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Plan a trip
	body := []byte(`{"startLocation":{"lat":41.87,"lng":-87.62,"address":"Chicago, IL"},"pickupLocation":{"lat":41.25,"lng":-86.25},"dropoffLocation":{"lat":40.71,"lng":-74.0,"address":"New York, NY"},"cycleHoursUsed":10}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/trips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account-Id", "acct_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var trip struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&trip); err != nil {
		log.Fatal(err)
	}
	if trip.ID == "" {
		log.Fatal("no trip returned")
	}
	log.Printf("Trip ID: %s", trip.ID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/trips/" + trip.ID + "/events/ws"}
	hdr := http.Header{}
	hdr.Set("X-Account-Id", "acct_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s", string(msg))
		}
	}()

	// Trigger a trip event via a status change
	time.Sleep(500 * time.Millisecond)
	stReq, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/trips/%s/status", base, trip.ID), bytes.NewReader([]byte(`{"status":"IN_PROGRESS"}`)))
	stReq.Header.Set("Content-Type", "application/json")
	stReq.Header.Set("X-Account-Id", "acct_demo")
	stReq.Header.Set("X-Role", "admin")
	_, _ = http.DefaultClient.Do(stReq)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
