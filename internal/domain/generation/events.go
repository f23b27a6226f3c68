package generation

import (
	"context"
	"sync"
	"time"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/intent"
)

// EventType names a coordinator event.
type EventType string

const (
	EventMessageAppended     EventType = "message.appended"
	EventExtractionPublished EventType = "extraction.published"
	EventGeneratingChanged   EventType = "generating.changed"
)

// Event is published synchronously to every subscriber.
type Event struct {
	Type           EventType             `json:"type"`
	ConversationID string                `json:"conversationId"`
	Message        *conversation.Message `json:"message,omitempty"`
	Fields         *intent.Fields        `json:"extractedFields,omitempty"`
	Generating     bool                  `json:"generating"`
	At             time.Time             `json:"at"`
}

// Handler receives events. Handlers run on the publisher's goroutine and
// must not block.
type Handler func(ctx context.Context, evt Event)

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	order    []uint64
	handlers map[uint64]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers evt to every current subscriber.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, evt)
	}
}
