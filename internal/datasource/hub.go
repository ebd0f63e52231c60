package datasource

import (
	"sync"
)

// Hub fans inserted documents out to in-process subscribers.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(Record)
}

// Subscribe registers fn for documents added to collection.
func (h *Hub) Subscribe(collection string, fn func(Record)) Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[string]map[int]func(Record))
	}
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]func(Record))
	}

	id := h.next
	h.next++
	h.subs[collection][id] = fn

	return OnceUnsubscribe(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], id)
	})
}

// Publish delivers r to the current subscribers of collection.
// Callbacks run on the caller's goroutine, outside the hub lock.
func (h *Hub) Publish(collection string, r Record) {
	h.mu.RLock()
	fns := make([]func(Record), 0, len(h.subs[collection]))
	for _, fn := range h.subs[collection] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(r)
	}
}

// Subscribers returns the number of active subscriptions on collection.
func (h *Hub) Subscribers(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}
