package api

import (
    "testing"
    "time"

    "tripdash/internal/model"
)

func TestBrokerPublishSubscribe(t *testing.T) {
    b := NewBroker()
    tid := "trip1"
    ch := b.Subscribe(tid)

    evt := model.TripEvent{Type: "status.changed", TripID: tid, Status: "IN_PROGRESS"}
    b.Publish(tid, evt)

    select {
    case got := <-ch:
        if got.Type != evt.Type { t.Fatalf("got type %s, want %s", got.Type, evt.Type) }
        if got.Status != "IN_PROGRESS" { t.Fatalf("bad payload: %+v", got) }
    case <-time.After(200 * time.Millisecond):
        t.Fatal("timeout waiting for event")
    }

    b.Unsubscribe(tid, ch)
    select {
    case _, ok := <-ch:
        if ok { t.Fatal("channel should be closed after unsubscribe") }
    case <-time.After(50 * time.Millisecond):
        // acceptable if already drained and closed
    }
}

func TestBrokerIsolatesTrips(t *testing.T) {
    b := NewBroker()
    ch := b.Subscribe("trip1")
    defer b.Unsubscribe("trip1", ch)

    b.Publish("trip2", model.TripEvent{Type: "status.changed", TripID: "trip2"})
    select {
    case evt := <-ch:
        t.Fatalf("unexpected event for other trip: %+v", evt)
    case <-time.After(50 * time.Millisecond):
    }
}

func TestBrokerNonBlockingPublish(t *testing.T) {
    b := NewBroker()
    ch := b.Subscribe("trip1")
    defer b.Unsubscribe("trip1", ch)

    // more events than the channel buffers; publish must not block
    done := make(chan struct{})
    go func() {
        for i := 0; i < 100; i++ {
            b.Publish("trip1", model.TripEvent{Type: "progress.updated", TripID: "trip1"})
        }
        close(done)
    }()
    select {
    case <-done:
    case <-time.After(500 * time.Millisecond):
        t.Fatal("publish blocked on a slow subscriber")
    }
}
