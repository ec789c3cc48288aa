// Package sse streams feed events to clients as Server-Sent Events. It is
// the plain-HTTP sibling of the websocket hub for clients that cannot
// upgrade.
//
//	broker := sse.NewBroker()
//	r.Get("/sse/stock", "feed.stock.sse", broker.ServeHTTP)
//	broker.Publish("stock", level)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const (
	subscriberBuffer = 16
	heartbeat        = 15 * time.Second
)

// Stream writes events to one client.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// New sets the event-stream headers and lifts the server's write deadline
// for this response.
func New(w http.ResponseWriter) *Stream {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &Stream{w: w, rc: rc}
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line; clients ignore it.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Event is one published message.
type Event struct {
	Name string
	Data any
}

// Broker fans published events out to every connected stream. A slow
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

func (b *Broker) Publish(kind string, data any) {
	ev := Event{Name: kind, Data: data}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener. Call the returned func to leave.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ServeHTTP streams events until the client goes away.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, leave := b.Subscribe()
	defer leave()

	stream := New(w)
	if err := stream.Comment("connected"); err != nil {
		logger.WithCtx(r.Context()).Debug("sse: flush unsupported", "error", err)
		return
	}

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		case ev := <-events:
			if err := stream.Send(ev.Name, ev.Data); err != nil {
				return
			}
		}
	}
}
