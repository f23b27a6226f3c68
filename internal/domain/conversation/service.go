package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// Service is the conversation store used by the generation coordinator and
// the HTTP layer.
type Service struct {
	repo Repository
	// cache is nil when the repository is shared between processes, since
	// writes made elsewhere could not invalidate it.
	cache *lru.Cache[string, intent.Fields]
	// mu orders repository writes with their cache updates.
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewService creates a conversation service with an extraction cache of
// cacheSize entries. A cacheSize of zero disables the cache.
func NewService(repo Repository, log zerolog.Logger, cacheSize int) (*Service, error) {
	s := &Service{
		repo: repo,
		log:  log.With().Str("component", "conversation-service").Logger(),
		now:  time.Now,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, intent.Fields](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create extraction cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Append stamps and stores the message. Assistant messages carrying
// metadata refresh the cached extraction.
func (s *Service) Append(ctx context.Context, conversationID string, role Role, content string, metadata *Metadata) (*Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation id is required", ErrInvalidMessage, "conversation-append-001")
	}
	if !role.IsValid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown role %q", role), ErrInvalidMessage, "conversation-append-002")
	}

	msg := &Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      s.now().UTC(),
		Metadata:       metadata,
	}

	stored, err := s.appendLocked(ctx, msg)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}

	s.log.Debug().
		Str("conversation_id", conversationID).
		Str("message_id", stored.ID).
		Str("role", string(stored.Role)).
		Msg("message appended")
	return stored, nil
}

// Get returns the conversation in order. Unknown ids yield an empty slice.
func (s *Service) Get(ctx context.Context, conversationID string) ([]*Message, error) {
	messages, err := s.repo.List(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation")
	}
	if messages == nil {
		messages = []*Message{}
	}
	return messages, nil
}

// Clear empties the conversation and drops its cached extraction.
func (s *Service) Clear(ctx context.Context, conversationID string) error {
	if err := s.clearLocked(ctx, conversationID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to clear conversation")
	}
	s.log.Info().Str("conversation_id", conversationID).Msg("conversation cleared")
	return nil
}

// LatestExtraction returns the fields of the most recent assistant message
// that carried an extraction.
func (s *Service) LatestExtraction(ctx context.Context, conversationID string) (intent.Fields, bool, error) {
	if s.cache == nil {
		return s.latestFromHistory(ctx, conversationID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fields, ok := s.cache.Get(conversationID); ok {
		return fields.Clone(), true, nil
	}
	fields, ok, err := s.latestFromHistory(ctx, conversationID)
	if err == nil && ok {
		s.cache.Add(conversationID, fields.Clone())
	}
	return fields, ok, err
}

func (s *Service) latestFromHistory(ctx context.Context, conversationID string) (intent.Fields, bool, error) {
	messages, err := s.Get(ctx, conversationID)
	if err != nil {
		return intent.Fields{}, false, err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role == RoleAssistant && msg.Metadata != nil {
			return msg.Metadata.ExtractedFields.Clone(), true, nil
		}
	}
	return intent.Fields{}, false, nil
}

func (s *Service) appendLocked(ctx context.Context, msg *Message) (*Message, error) {
	if s.cache == nil {
		return s.repo.Append(ctx, msg.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.repo.Append(ctx, msg.Clone())
	if err != nil {
		return nil, err
	}
	if stored.Role == RoleAssistant && stored.Metadata != nil {
		s.cache.Add(msg.ConversationID, stored.Metadata.ExtractedFields.Clone())
	}
	return stored, nil
}

func (s *Service) clearLocked(ctx context.Context, conversationID string) error {
	if s.cache == nil {
		return s.repo.Clear(ctx, conversationID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Clear(ctx, conversationID); err != nil {
		return err
	}
	s.cache.Remove(conversationID)
	return nil
}
