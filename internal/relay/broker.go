// Package relay re-publishes tagged Puppet results to local subscribers
// (typically a host UI listening on the SSE endpoint). It adds no ordering or
// delivery guarantees beyond what the connection already provides; slow
// subscribers lose events rather than stall the session.
package relay

import (
	"sync"
	"sync/atomic"

	"github.com/swisscows/browsebridge/internal/protocol"
)

const defaultBufSize = 256

// Event is one tagged result surfaced to subscribers. Payload is the raw
// JSON of the tagged message, forwarded verbatim.
type Event struct {
	Tag     protocol.Tag
	Payload string
}

// Broker fans events out to all subscribers.
type Broker struct {
	bufSize int

	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
}

// NewBroker creates a broker. bufSize <= 0 selects the default per-subscriber
// buffer.
func NewBroker(bufSize int) *Broker {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	return &Broker{
		bufSize:     bufSize,
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its ID and event channel.
// The channel is buffered; events past capacity are dropped for that
// subscriber only.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, b.bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// PublishMessage publishes an inbound tagged message as-is.
func (b *Broker) PublishMessage(msg protocol.Message) {
	b.Publish(Event{Tag: msg.Type, Payload: string(msg.Data)})
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
