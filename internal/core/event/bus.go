package event

import (
	"reflect"
	"sync"
)

// Event is any record published on the Bus.
type Event interface {
	Kind() string
}

// Bus is a double-buffered event bus. Events emitted during a tick land in the back
// buffer; DispatchSystem swaps and dispatches them in the Output phase.
// Delivery preserves emission order across event types.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []Event
	back     []Event
	handlers map[reflect.Type][]func(Event)
	all      []func(Event)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]Event, 0, 64),
		back:     make([]Event, 0, 64),
		handlers: make(map[reflect.Type][]func(Event)),
	}
}

// Emit queues an event into the back buffer.
func (b *Bus) Emit(ev Event) {
	b.back = append(b.back, ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T Event](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev Event) {
		fn(ev.(T))
	})
}

// SubscribeAll registers a handler receiving every event regardless of type.
func (b *Bus) SubscribeAll(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// Pending reports how many events wait in the back buffer.
func (b *Bus) Pending() int { return len(b.back) }

// DispatchAll delivers all front-buffer events to their subscribed handlers,
// typed handlers first, then catch-all handlers.
func (b *Bus) DispatchAll() {
	for _, ev := range b.front {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
		for _, h := range b.all {
			h(ev)
		}
	}
	b.front = b.front[:0]
}
