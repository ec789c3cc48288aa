// Package event is an in-process publish/subscribe dispatcher. Services fire
// events after their transaction commits; listeners must not block.
package event

import (
	"sync"
)

type Handler func(payload interface{})

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers handler for name.
func (d *Dispatcher) Listen(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

func (d *Dispatcher) snapshot(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[name]...)
}

// Fire calls every listener of name in registration order. A nil
// dispatcher drops the event.
func (d *Dispatcher) Fire(name string, payload interface{}) {
	if d == nil {
		return
	}
	for _, h := range d.snapshot(name) {
		h(payload)
	}
}

// FireAsync runs each listener on its own goroutine and returns at once.
func (d *Dispatcher) FireAsync(name string, payload interface{}) {
	if d == nil {
		return
	}
	for _, h := range d.snapshot(name) {
		go h(payload)
	}
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}
