package draft

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// Saver creates reports from drafts.
type Saver interface {
	Create(ctx context.Context, params report.CreateParams) (*report.Report, error)
}

// Session is the draft of one conversation plus the fields the user edited.
type Session struct {
	ConversationID string  `json:"conversationId"`
	Draft          Draft   `json:"draft"`
	Touched        []Field `json:"touchedFields"`
}

// Edit carries user changes. Nil fields are not edited.
type Edit struct {
	ReferenceNumber *string
	Title           *string
	Category        *report.Category
	Priority        *report.Priority
	Department      *string
	EstimatedBudget *decimal.Decimal
	Tags            *[]string
	Content         *string
}

type session struct {
	draft   Draft
	touched FieldSet
	// revision counts changes so Save can tell whether the draft moved on
	// while the report was being created.
	revision uint64
}

// Service keeps one draft per conversation in memory.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	saver    Saver
	log      zerolog.Logger
}

// NewService creates a draft service that saves through saver.
func NewService(saver Saver, log zerolog.Logger) *Service {
	return &Service{
		sessions: make(map[string]*session),
		saver:    saver,
		log:      log.With().Str("component", "draft-service").Logger(),
	}
}

// Attach subscribes the service to coordinator events: published
// extractions are merged and assistant replies become the draft content.
func (s *Service) Attach(bus *generation.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(_ context.Context, evt generation.Event) {
		switch evt.Type {
		case generation.EventExtractionPublished:
			if evt.Fields != nil {
				s.ApplyExtraction(evt.ConversationID, *evt.Fields)
			}
		case generation.EventMessageAppended:
			if evt.Message != nil && evt.Message.Role == conversation.RoleAssistant {
				s.applyContent(evt.ConversationID, evt.Message.Content)
			}
		}
	})
}

// Get returns the current session, creating an empty draft if needed.
func (s *Service) Get(conversationID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(conversationID, s.sessionLocked(conversationID))
}

// ApplyExtraction merges fields into the draft, keeping user-edited fields.
func (s *Service) ApplyExtraction(conversationID string, fields intent.Fields) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(conversationID)
	sess.draft = Merge(sess.draft, fields, sess.touched)
	sess.revision++
	s.log.Debug().Str("conversation_id", conversationID).Msg("extraction merged into draft")
	return s.snapshot(conversationID, sess)
}

func (s *Service) applyContent(conversationID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(conversationID)
	if !sess.touched.Has(FieldContent) {
		sess.draft.Content = content
		sess.revision++
	}
}

// Edit applies user changes and marks each changed field as touched.
func (s *Service) Edit(ctx context.Context, conversationID string, edit Edit) (Session, error) {
	if err := edit.validate(); err != nil {
		return Session{}, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid draft edit", err, "draft-edit-001", map[string]any{"fields": err.Fields()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(conversationID)
	d := &sess.draft
	mark := func(f Field) { sess.touched[f] = struct{}{} }
	sess.revision++

	if edit.ReferenceNumber != nil {
		d.ReferenceNumber = *edit.ReferenceNumber
		mark(FieldReferenceNumber)
	}
	if edit.Title != nil {
		d.Title = *edit.Title
		mark(FieldTitle)
	}
	if edit.Category != nil {
		d.Category = *edit.Category
		mark(FieldCategory)
	}
	if edit.Priority != nil {
		d.Priority = *edit.Priority
		mark(FieldPriority)
	}
	if edit.Department != nil {
		d.Department = *edit.Department
		mark(FieldDepartment)
	}
	if edit.EstimatedBudget != nil {
		v := *edit.EstimatedBudget
		d.EstimatedBudget = &v
		mark(FieldEstimatedBudget)
	}
	if edit.Tags != nil {
		d.Tags = append([]string{}, (*edit.Tags)...)
		mark(FieldTags)
	}
	if edit.Content != nil {
		d.Content = *edit.Content
		mark(FieldContent)
	}
	return s.snapshot(conversationID, sess), nil
}

// Reset discards the draft and its touched fields.
func (s *Service) Reset(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
}

// Save creates a report from the draft. On success the draft is reset,
// unless it changed while the report was being created.
func (s *Service) Save(ctx context.Context, conversationID string) (*report.Report, error) {
	s.mu.Lock()
	saved := s.sessionLocked(conversationID)
	d := saved.draft.Clone()
	revision := saved.revision
	s.mu.Unlock()

	created, err := s.saver.Create(ctx, report.CreateParams{
		ReferenceNumber: d.ReferenceNumber,
		Title:           d.Title,
		Content:         d.Content,
		Category:        d.Category,
		Priority:        d.Priority,
		Department:      d.Department,
		EstimatedBudget: d.EstimatedBudget,
		Tags:            d.Tags,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current, ok := s.sessions[conversationID]
	unchanged := ok && current == saved && current.revision == revision
	if unchanged {
		delete(s.sessions, conversationID)
	}
	s.mu.Unlock()

	s.log.Info().
		Str("conversation_id", conversationID).
		Str("report_id", created.ID).
		Bool("draft_reset", unchanged).
		Msg("draft saved as report")
	return created, nil
}

func (s *Service) sessionLocked(conversationID string) *session {
	sess, ok := s.sessions[conversationID]
	if !ok {
		sess = &session{draft: New(), touched: make(FieldSet)}
		s.sessions[conversationID] = sess
	}
	return sess
}

func (s *Service) snapshot(conversationID string, sess *session) Session {
	touched := make([]Field, 0, len(sess.touched))
	for f := range sess.touched {
		touched = append(touched, f)
	}
	slices.Sort(touched)
	return Session{
		ConversationID: conversationID,
		Draft:          sess.draft.Clone(),
		Touched:        touched,
	}
}

func (e Edit) validate() *report.ValidationError {
	invalid := make(map[string]string)
	if e.Category != nil && !e.Category.IsValid() {
		invalid[string(FieldCategory)] = fmt.Sprintf("unknown value %q", string(*e.Category))
	}
	if e.Priority != nil && !e.Priority.IsValid() {
		invalid[string(FieldPriority)] = fmt.Sprintf("unknown value %q", string(*e.Priority))
	}
	if e.EstimatedBudget != nil && e.EstimatedBudget.IsNegative() {
		invalid[string(FieldEstimatedBudget)] = "must not be negative"
	}
	if e.Tags != nil {
		for _, tag := range *e.Tags {
			if strings.TrimSpace(tag) == "" {
				invalid[string(FieldTags)] = "tags must not be blank"
				break
			}
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return &report.ValidationError{Invalid: invalid}
}
