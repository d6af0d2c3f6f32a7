package api

import (
    "sync"

    "tripdash/internal/model"
)

// Broker is the in-memory trip event fanout used when Redis is not
// configured. Sends never block; slow subscribers drop events.
type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan model.TripEvent]struct{} // tripId -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan model.TripEvent]struct{}{}}
}

func (b *Broker) Subscribe(tripID string) chan model.TripEvent {
    ch := make(chan model.TripEvent, 8)
    b.mu.Lock()
    if b.subs[tripID] == nil { b.subs[tripID] = map[chan model.TripEvent]struct{}{} }
    b.subs[tripID][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(tripID string, ch chan model.TripEvent) {
    b.mu.Lock()
    if m := b.subs[tripID]; m != nil {
        delete(m, ch)
        if len(m) == 0 { delete(b.subs, tripID) }
    }
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(tripID string, evt model.TripEvent) {
    b.mu.Lock()
    m := b.subs[tripID]
    for ch := range m {
        select { case ch <- evt: default: }
    }
    b.mu.Unlock()
}
