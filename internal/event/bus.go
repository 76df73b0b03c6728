// Package event provides a small synchronous publish/subscribe bus for
// document notifications. The host editor publishes change and close
// events for its open documents; the lens store subscribes per document
// to keep displayed annotations from outliving the text they describe.
package event

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Topic is a hierarchical event type.
type Topic string

// Topics published by document hosts.
const (
	// TopicDocumentChanged carries a DocumentChange payload.
	TopicDocumentChanged Topic = "document.changed"

	// TopicDocumentClosed carries a DocumentClose payload.
	TopicDocumentClosed Topic = "document.closed"
)

// DocumentChange describes a line-range mutation of a document.
type DocumentChange struct {
	Path      string
	StartLine int
	EndLine   int
}

// DocumentClose signals that a document was unloaded or detached.
type DocumentClose struct {
	Path string
}

// Metadata contains standard information attached to every envelope.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Source identifies the module that published the event.
	Source string

	// Timestamp is when the event was created.
	Timestamp time.Time
}

// Envelope wraps a payload with its topic and metadata.
type Envelope struct {
	Topic    Topic
	Payload  any
	Metadata Metadata
}

// HandlerFunc processes a published envelope. Handlers run synchronously
// on the publishing goroutine and must not block.
type HandlerFunc func(Envelope)

// Subscription represents an active subscription. Cancel is idempotent.
type Subscription interface {
	Topic() Topic
	Cancel()
}

type subscription struct {
	bus     *Bus
	topic   Topic
	handler HandlerFunc
	once    sync.Once
}

func (s *subscription) Topic() Topic { return s.topic }

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.bus.remove(s)
	})
}

// Bus is a synchronous topic-based event bus.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]*subscription
	source string
}

// NewBus creates an empty bus. The source labels envelopes published
// through Publish when the caller does not supply metadata.
func NewBus(source string) *Bus {
	return &Bus{
		subs:   make(map[Topic][]*subscription),
		source: source,
	}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, fn HandlerFunc) Subscription {
	sub := &subscription{bus: b, topic: topic, handler: fn}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return sub
}

// Publish delivers a payload to every subscriber of the topic, in
// subscription order, on the calling goroutine.
func (b *Bus) Publish(topic Topic, payload any) {
	env := Envelope{
		Topic:   topic,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Source:    b.source,
			Timestamp: time.Now(),
		},
	}

	b.mu.RLock()
	subs := make([]*subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(env)
	}
}

// SubscriberCount returns the number of active subscriptions for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[target.topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// generateID returns a random hex identifier for event metadata.
func generateID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf[:])
}
