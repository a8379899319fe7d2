package service

import (
	"sync"

	"github.com/sarmatovd/shop-services/pkg/domain"
)

// waiterRegistry maps in-flight correlation ids to one-shot result
// channels. A single consumer resolves waiters as replies arrive.
type waiterRegistry struct {
	mu      sync.Mutex
	waiters map[string]chan domain.OrderPayload
}

func newWaiterRegistry() *waiterRegistry {
	return &waiterRegistry{
		waiters: make(map[string]chan domain.OrderPayload),
	}
}

// Register creates a buffered channel for the correlation id so the
// resolver never blocks on a waiter that already gave up.
func (r *waiterRegistry) Register(correlationID string) chan domain.OrderPayload {
	ch := make(chan domain.OrderPayload, 1)

	r.mu.Lock()
	r.waiters[correlationID] = ch
	r.mu.Unlock()

	return ch
}

// Resolve delivers the payload to the registered waiter and removes it.
// Returns false when no waiter is registered for the id.
func (r *waiterRegistry) Resolve(correlationID string, payload domain.OrderPayload) bool {
	r.mu.Lock()
	ch, ok := r.waiters[correlationID]
	if ok {
		delete(r.waiters, correlationID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	ch <- payload
	return true
}

// Remove drops the waiter without delivering a result. Used when the
// caller times out or is cancelled.
func (r *waiterRegistry) Remove(correlationID string) {
	r.mu.Lock()
	delete(r.waiters, correlationID)
	r.mu.Unlock()
}

func (r *waiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.waiters)
}
