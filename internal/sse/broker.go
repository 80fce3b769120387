// Package sse pushes note collection changes to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Event types sent to clients. Per-file events are "note." + change kind.
const (
	EventCollectionUpdated = "collection.updated"
	noteEventPrefix        = "note."
)

const (
	defaultCollectionThrottle = 2 * time.Second
	defaultHeartbeat          = 30 * time.Second
	clientBuffer              = 64
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChangeData is the payload of note.* events.
type ChangeData struct {
	File     string `json:"file"`
	Category string `json:"category"`
}

type changeReq struct {
	kind string
	file string
}

// Broker fans events out to connected SSE clients.
//
// A single loop goroutine owns the client set and the collection.updated
// throttle; public methods talk to it over channels.
type Broker struct {
	collectionMin time.Duration
	heartbeat     time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithCollectionThrottle sets the minimum gap between collection.updated events.
func WithCollectionThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.collectionMin = d
		}
	}
}

// WithHeartbeat sets how often idle streams receive a keep-alive comment.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

// NewBroker starts a broker loop. Call Close to stop it.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		collectionMin: defaultCollectionThrottle,
		heartbeat:     defaultHeartbeat,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}

	go b.run()
	return b
}

// encode formats an event in the text/event-stream wire format.
func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastCollection time.Time

	broadcast := func(event Event) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.changeCh:
			broadcast(Event{
				Type: noteEventPrefix + req.kind,
				Data: ChangeData{File: req.file, Category: strings.TrimSuffix(req.file, filepath.Ext(req.file))},
			})

			now := time.Now()
			if now.Sub(lastCollection) >= b.collectionMin {
				lastCollection = now
				broadcast(Event{Type: EventCollectionUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client and returns its message channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange announces that a content file was created, updated or
// deleted, followed by a throttled collection.updated event.
func (b *Broker) PublishChange(kind, file string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{kind: kind, file: file}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
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
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
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
