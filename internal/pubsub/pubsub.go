// Package pubsub implements the channel fan-out described in spec.md §4.7:
// subscribers register against named channels and receive every message
// published to that channel for as long as the registration lives. Delivery
// runs through a bounded shared worker pool rather than one goroutine per
// subscriber, matching the "hardware-concurrency-bounded" requirement.
package pubsub

import (
	"sync"

	"github.com/rsms/gored/internal/resp"
)

// Subscriber is anything a channel can deliver a message to. session.Session
// implements this; kept as an interface here so pubsub never imports
// session (which in turn imports pubsub's Subscription type).
type Subscriber interface {
	Send(data []byte) error
}

// Subscription is returned from Hub.Subscribe and must be closed — on an
// UNSUBSCRIBE command or on connection teardown — to stop delivery. This is
// the explicit-lifetime analogue of spec.md's "weak subscriber token": the
// channel never blocks a subscriber from going away, and does not reference
// it once Close has run.
type Subscription struct {
	hub     *Hub
	channel string
	id      uint64
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s.channel, s.id)
}

type channel struct {
	nextID uint64
	subs   map[uint64]Subscriber
}

// Hub owns every channel and the shared dispatch pool.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*channel
	pool     *workerPool
}

func NewHub(workers int) *Hub {
	return &Hub{
		channels: make(map[string]*channel),
		pool:     newWorkerPool(workers),
	}
}

// Subscribe registers sub against channel name, returning a Subscription the
// caller closes to stop delivery.
func (h *Hub) Subscribe(name string, sub Subscriber) *Subscription {
	h.mu.Lock()
	ch := h.channels[name]
	if ch == nil {
		ch = &channel{subs: make(map[uint64]Subscriber)}
		h.channels[name] = ch
	}
	ch.nextID++
	id := ch.nextID
	ch.subs[id] = sub
	h.mu.Unlock()
	return &Subscription{hub: h, channel: name, id: id}
}

func (h *Hub) unsubscribe(name string, id uint64) {
	h.mu.Lock()
	if ch := h.channels[name]; ch != nil {
		delete(ch.subs, id)
		if len(ch.subs) == 0 {
			delete(h.channels, name)
		}
	}
	h.mu.Unlock()
}

// Publish fans payload out to every live subscriber of name, returning the
// number of subscribers the message was handed to. Delivery is async
// (via the worker pool); a dead subscriber's error is not surfaced to the
// publisher, matching spec.md's "per-subscriber errors are isolated".
func (h *Hub) Publish(name string, payload []byte) int {
	h.mu.RLock()
	ch := h.channels[name]
	var snapshot map[uint64]Subscriber
	if ch != nil {
		snapshot = make(map[uint64]Subscriber, len(ch.subs))
		for id, s := range ch.subs {
			snapshot[id] = s
		}
	}
	h.mu.RUnlock()
	if len(snapshot) == 0 {
		return 0
	}
	frame := encodeMessage(name, payload)
	for id, s := range snapshot {
		id, s := id, s
		h.pool.Submit(func() {
			if err := s.Send(frame); err != nil {
				h.unsubscribe(name, id)
			}
		})
	}
	return len(snapshot)
}

// encodeMessage builds the *3 $message $channel $payload push frame
// spec.md §4.7 requires for every delivered message.
func encodeMessage(channel string, payload []byte) []byte {
	w := resp.NewWriter(nil)
	w.ArrayHeader(3)
	w.BulkStringS("message")
	w.BulkStringS(channel)
	w.BulkString(payload)
	return w.Bytes()
}
