// Package events provides a typed in-process publish/subscribe bus.
package events

import (
	"sync"
)

// Handler receives published events
type Handler[T any] func(T)

// Bus delivers events of one type to every subscriber, synchronously and in
// subscription order.
type Bus[T any] struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id      int
	name    string
	handler Handler[T]
}

// NewBus creates an empty bus
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a named handler and returns a function that removes it
func (b *Bus[T]) Subscribe(name string, h Handler[T]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription[T]{id: id, name: name, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber with the event
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	handlers := make([]subscription[T], len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, s := range handlers {
		s.handler(event)
	}
}

// Subscribers returns the names of the current subscribers
func (b *Bus[T]) Subscribers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.handlers))
	for _, s := range b.handlers {
		names = append(names, s.name)
	}
	return names
}
