package api

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    redis "github.com/redis/go-redis/v9"

    "tripdash/internal/model"
)

type EventBroker interface {
    Subscribe(tripID string) chan model.TripEvent
    Unsubscribe(tripID string, ch chan model.TripEvent)
    Publish(tripID string, evt model.TripEvent)
}

// In-memory broker already implemented in broker.go and satisfies EventBroker

// RedisBroker implements EventBroker over Redis Pub/Sub so multiple API
// replicas see each other's trip events.
type RedisBroker struct {
    rdb  *redis.Client
    mu   sync.Mutex
    subs map[chan model.TripEvent]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
    opt, err := redis.ParseURL(url)
    if err != nil { return nil, err }
    return &RedisBroker{rdb: redis.NewClient(opt), subs: map[chan model.TripEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(tripID string) chan model.TripEvent {
    ch := make(chan model.TripEvent, 16)
    ctx := context.Background()
    ps := b.rdb.Subscribe(ctx, b.chanName(tripID))
    // initial consume to ensure subscription
    _, _ = ps.Receive(ctx)
    b.mu.Lock()
    b.subs[ch] = ps
    b.mu.Unlock()
    // pump goroutine; the sole closer of ch. It exits when ps.Channel()
    // closes, which Unsubscribe triggers via ps.Close().
    go func() {
        defer close(ch)
        for msg := range ps.Channel() {
            var evt model.TripEvent
            if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
                select { case ch <- evt: default: }
            }
        }
    }()
    return ch
}

func (b *RedisBroker) Unsubscribe(tripID string, ch chan model.TripEvent) {
    b.mu.Lock()
    ps := b.subs[ch]
    delete(b.subs, ch)
    b.mu.Unlock()
    if ps != nil { _ = ps.Close() }
}

func (b *RedisBroker) Publish(tripID string, evt model.TripEvent) {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    data, _ := json.Marshal(evt)
    _ = b.rdb.Publish(ctx, b.chanName(tripID), data).Err()
}

func (b *RedisBroker) chanName(tripID string) string { return "trip:" + tripID }
