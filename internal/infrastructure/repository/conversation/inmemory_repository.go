package conversation

import (
	"context"
	"sync"

	domain "jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/utils/idgen"
)

// InMemoryRepository keeps conversations in process memory.
type InMemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string][]*domain.Message
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{conversations: make(map[string][]*domain.Message)}
}

// Append stores a copy of msg, keeping timestamps non-decreasing.
func (r *InMemoryRepository) Append(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := msg.Clone()
	if stored.ID == "" {
		stored.ID = idgen.NewMessageID()
	}
	history := r.conversations[msg.ConversationID]
	if n := len(history); n > 0 && stored.Timestamp.Before(history[n-1].Timestamp) {
		stored.Timestamp = history[n-1].Timestamp
	}
	r.conversations[msg.ConversationID] = append(history, stored)
	return stored.Clone(), nil
}

// List returns copies of the conversation's messages in append order.
func (r *InMemoryRepository) List(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.conversations[conversationID]
	out := make([]*domain.Message, 0, len(history))
	for _, msg := range history {
		out = append(out, msg.Clone())
	}
	return out, nil
}

// Clear drops the conversation.
func (r *InMemoryRepository) Clear(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, conversationID)
	return nil
}
