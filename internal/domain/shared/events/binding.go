package events

import (
	"context"
	"fmt"
	"sync"
)

// Listener reacts to a dispatched event. Listeners are read-only with
// respect to the entity that raised the event.
type Listener interface {
	Name() string
	Handle(ctx context.Context, event DomainEvent) error
}

type listenerFunc struct {
	name string
	fn   func(ctx context.Context, event DomainEvent) error
}

func (l listenerFunc) Name() string { return l.name }

func (l listenerFunc) Handle(ctx context.Context, event DomainEvent) error {
	return l.fn(ctx, event)
}

// ListenerFunc adapts a function into a named Listener.
func ListenerFunc(name string, fn func(ctx context.Context, event DomainEvent) error) Listener {
	return listenerFunc{name: name, fn: fn}
}

// BindingTable maps event types to ordered listener chains. It is built once
// at boot and frozen; binding after Freeze panics.
type BindingTable struct {
	mu       sync.RWMutex
	bindings map[EventType][]Listener
	frozen   bool
}

func NewBindingTable() *BindingTable {
	return &BindingTable{bindings: make(map[EventType][]Listener)}
}

// Bind appends listeners to the chain for eventType, preserving order.
func (t *BindingTable) Bind(eventType EventType, listeners ...Listener) *BindingTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		panic(fmt.Sprintf("events: bind %s after freeze", eventType))
	}
	for _, l := range listeners {
		if l == nil {
			panic(fmt.Sprintf("events: nil listener bound to %s", eventType))
		}
	}
	t.bindings[eventType] = append(t.bindings[eventType], listeners...)
	return t
}

// Freeze makes the table read-only.
func (t *BindingTable) Freeze() *BindingTable {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
	return t
}

func (t *BindingTable) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Listeners returns a copy of the chain for eventType.
func (t *BindingTable) Listeners(eventType EventType) []Listener {
	t.mu.RLock()
	defer t.mu.RUnlock()
	chain := t.bindings[eventType]
	out := make([]Listener, len(chain))
	copy(out, chain)
	return out
}
