package api

import (
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"

    "tripdash/internal/model"
)

func newTestRedisBroker(t *testing.T) *RedisBroker {
    t.Helper()
    mr := miniredis.RunT(t)
    b, err := NewRedisBroker("redis://" + mr.Addr())
    if err != nil { t.Fatalf("NewRedisBroker: %v", err) }
    return b
}

func recvEvent(t *testing.T, ch chan model.TripEvent) model.TripEvent {
    t.Helper()
    select {
    case evt := <-ch:
        return evt
    case <-time.After(time.Second):
        t.Fatal("timeout waiting for event")
        return model.TripEvent{}
    }
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
    b := newTestRedisBroker(t)
    ch := b.Subscribe("trip1")
    defer b.Unsubscribe("trip1", ch)

    b.Publish("trip1", model.TripEvent{Type: "status.changed", TripID: "trip1", Status: "IN_PROGRESS"})
    evt := recvEvent(t, ch)
    if evt.Type != "status.changed" || evt.Status != "IN_PROGRESS" { t.Fatalf("unexpected event: %+v", evt) }
}

func TestRedisBrokerUnsubscribeSurvivesLaterPublish(t *testing.T) {
    b := newTestRedisBroker(t)
    ch := b.Subscribe("trip1")

    b.Publish("trip1", model.TripEvent{Type: "status.changed", TripID: "trip1"})
    recvEvent(t, ch)

    b.Unsubscribe("trip1", ch)
    // publishing after the disconnect must not reach a closed channel
    b.Publish("trip1", model.TripEvent{Type: "progress.updated", TripID: "trip1"})

    // the pump closes ch once its subscription is torn down
    deadline := time.Now().Add(time.Second)
    for {
        select {
        case _, ok := <-ch:
            if !ok { return }
        case <-time.After(10 * time.Millisecond):
        }
        if time.Now().After(deadline) { t.Fatal("channel was not closed after unsubscribe") }
    }
}

func TestRedisBrokerUnsubscribeTwice(t *testing.T) {
    b := newTestRedisBroker(t)
    ch := b.Subscribe("trip1")
    b.Unsubscribe("trip1", ch)
    // a second call for the same channel is a no-op, not a double close
    b.Unsubscribe("trip1", ch)
}
