// Package sse pushes site rebuild notifications to browsers over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	EventSiteRebuilt  = "site.rebuilt"
	EventGraphUpdated = "graph.updated"
)

// Event is one message on the stream. An empty ID is filled with a fresh
// UUID when the event is published.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Rebuilt describes one finished site rebuild.
type Rebuilt struct {
	Paths  []string `json:"paths"`
	Scraps int      `json:"scraps"`
	Tags   int      `json:"tags"`
}

const (
	clientBuffer     = 64
	defaultHeartbeat = 30 * time.Second
	// reconnectDelay is the retry hint sent to browsers, in milliseconds.
	reconnectDelay = 3000
)

// frame is an encoded event ready to be written to clients.
type frame struct {
	id  string
	raw []byte
}

// hub is the broker state. It is only touched by the loop goroutine.
type hub struct {
	clients   map[chan []byte]struct{}
	lastGraph time.Time
	// latest is the most recent site.rebuilt frame, replayed to clients
	// that reconnect after missing it.
	latest *frame
}

// Broker fans events out to subscribed clients. All state lives in one
// goroutine; public methods queue operations on it.
type Broker struct {
	graphMin  time.Duration
	heartbeat time.Duration

	ops  chan func(*hub)
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewBroker starts a broker. graph.updated events are sent at most once per
// graphThrottle.
func NewBroker(graphThrottle time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}
	b := &Broker{
		graphMin:  graphThrottle,
		heartbeat: defaultHeartbeat,
		ops:       make(chan func(*hub)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stop:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// exec queues op on the loop. It reports false once the broker is closed.
func (b *Broker) exec(op func(*hub)) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	b.once.Do(func() { close(b.stop) })
	<-b.done
}

// Subscribe registers a client. lastEventID is the id the client saw last;
// when it differs from the latest rebuild, that rebuild is replayed first.
// The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe(lastEventID string) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.exec(func(h *hub) {
		h.clients[ch] = struct{}{}
		if h.latest != nil && lastEventID != "" && h.latest.id != lastEventID {
			ch <- h.latest.raw
		}
	}) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.exec(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.exec(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends an event to all connected clients. Clients whose buffer is
// full miss the event.
func (b *Broker) Publish(event Event) {
	f, err := encode(event)
	if err != nil {
		return
	}
	b.exec(func(h *hub) { h.broadcast(f) })
}

// PublishRebuilt sends site.rebuilt and, at most once per throttle
// interval, graph.updated.
func (b *Broker) PublishRebuilt(r Rebuilt) {
	if r.Paths == nil {
		r.Paths = []string{}
	}
	f, err := encode(Event{Type: EventSiteRebuilt, Data: r})
	if err != nil {
		return
	}
	b.exec(func(h *hub) {
		h.latest = &f
		h.broadcast(f)

		now := time.Now()
		if now.Sub(h.lastGraph) < b.graphMin {
			return
		}
		h.lastGraph = now
		if g, err := encode(Event{Type: EventGraphUpdated, Data: struct{}{}}); err == nil {
			h.broadcast(g)
		}
	})
}

func (h *hub) broadcast(f frame) {
	for ch := range h.clients {
		select {
		case ch <- f.raw:
		default:
		}
	}
}

func encode(e Event) (frame, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return frame{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return frame{
		id:  e.ID,
		raw: fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, payload),
	}, nil
}

// ServeHTTP streams events to one client (GET /api/events) until the
// request is cancelled or the broker closes. Comment lines keep idle
// connections open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", reconnectDelay)
	flusher.Flush()

	ch := b.Subscribe(r.Header.Get("Last-Event-ID"))
	defer b.Unsubscribe(ch)

	tick := time.NewTicker(b.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
