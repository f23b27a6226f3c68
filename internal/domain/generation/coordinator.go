// Package generation runs conversational turns: it records the user
// message, classifies it and records the reply, allowing at most one turn
// in flight per conversation.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// DefaultTimeout bounds a single classification.
const DefaultTimeout = 30 * time.Second

// Outcome labels how a turn ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// MessageStore is the subset of the conversation store used by turns.
type MessageStore interface {
	Append(ctx context.Context, conversationID string, role conversation.Role, content string, metadata *conversation.Metadata) (*conversation.Message, error)
}

// Observer records turn outcomes.
type Observer interface {
	TurnCompleted(outcome Outcome, elapsed time.Duration)
	SubmitRejected(reason string)
}

type nopObserver struct{}

func (nopObserver) TurnCompleted(Outcome, time.Duration) {}
func (nopObserver) SubmitRejected(string)                {}

// Turn is the result of one accepted submit.
type Turn struct {
	UserMessage *conversation.Message `json:"userMessage"`
	// Reply is the assistant message, or the system message when Failed.
	Reply  *conversation.Message `json:"reply"`
	Fields *intent.Fields        `json:"extractedFields,omitempty"`
	Failed bool                  `json:"failed"`
}

// Config tunes the coordinator.
type Config struct {
	Timeout time.Duration
}

// Coordinator orchestrates turns.
type Coordinator struct {
	store      MessageStore
	classifier intent.Classifier
	guard      Guard
	bus        *Bus
	timeout    time.Duration
	observer   Observer
	log        zerolog.Logger
	tracer     trace.Tracer
}

// NewCoordinator wires a coordinator. A nil observer disables metrics.
func NewCoordinator(store MessageStore, classifier intent.Classifier, guard Guard, bus *Bus, cfg Config, observer Observer, log zerolog.Logger) *Coordinator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Coordinator{
		store:      store,
		classifier: classifier,
		guard:      guard,
		bus:        bus,
		timeout:    cfg.Timeout,
		observer:   observer,
		log:        log.With().Str("component", "generation-coordinator").Logger(),
		tracer:     otel.Tracer("report-api/generation"),
	}
}

// Submit runs one turn. Blank text and concurrent turns are rejected before
// anything is appended. Classifier failures are answered with a system
// message and reported through Turn.Failed, not as an error.
func (c *Coordinator) Submit(ctx context.Context, conversationID, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		c.observer.SubmitRejected("invalid_input")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message text must not be empty", ErrInvalidInput, "generation-submit-001")
	}

	lease, acquired, err := c.guard.TryAcquire(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to acquire generation guard", err, "generation-submit-002")
	}
	if !acquired {
		c.observer.SubmitRejected("already_generating")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"conversation is already generating", ErrAlreadyGenerating, "generation-submit-003",
			map[string]any{"conversation_id": conversationID})
	}

	ctx, span := c.tracer.Start(ctx, "generation.Submit", trace.WithAttributes(attribute.String("conversation.id", conversationID)))
	defer span.End()

	// The turn must end idle even when the caller has gone away.
	detached := context.WithoutCancel(ctx)
	started := time.Now()
	generating := false
	defer func() {
		if generating {
			c.bus.Publish(detached, Event{Type: EventGeneratingChanged, ConversationID: conversationID, Generating: false})
		}
		if err := lease.Release(detached); err != nil {
			c.log.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to release generation guard")
		}
	}()

	userMsg, err := c.store.Append(ctx, conversationID, conversation.RoleUser, text, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append user message")
		return nil, err
	}
	c.bus.Publish(ctx, Event{Type: EventMessageAppended, ConversationID: conversationID, Message: userMsg})

	generating = true
	c.bus.Publish(ctx, Event{Type: EventGeneratingChanged, ConversationID: conversationID, Generating: true})

	result, classifyErr := c.classify(ctx, text)
	if classifyErr != nil {
		return c.fail(detached, span, conversationID, userMsg, started, classifyErr)
	}

	metadata := &conversation.Metadata{
		ExtractedFields: result.Fields.Clone(),
		Confidence:      result.Confidence,
		SuggestedFields: result.SuggestedFields(),
	}
	reply, err := c.store.Append(detached, conversationID, conversation.RoleAssistant, result.ResponseText, metadata)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append assistant message")
		c.observer.TurnCompleted(OutcomeFailure, time.Since(started))
		return nil, err
	}

	fields := result.Fields.Clone()
	c.bus.Publish(detached, Event{Type: EventMessageAppended, ConversationID: conversationID, Message: reply})
	c.bus.Publish(detached, Event{Type: EventExtractionPublished, ConversationID: conversationID, Fields: &fields})

	elapsed := time.Since(started)
	c.observer.TurnCompleted(OutcomeSuccess, elapsed)
	span.SetAttributes(attribute.String("intent.rule", result.Rule), attribute.Float64("intent.confidence", result.Confidence))
	c.log.Info().
		Str("conversation_id", conversationID).
		Str("rule", result.Rule).
		Dur("elapsed", elapsed).
		Msg("turn completed")

	return &Turn{UserMessage: userMsg, Reply: reply, Fields: &fields}, nil
}

// IsGenerating reports whether a turn is in flight for the conversation.
func (c *Coordinator) IsGenerating(ctx context.Context, conversationID string) (bool, error) {
	held, err := c.guard.IsHeld(ctx, conversationID)
	if err != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to read generation state", err, "generation-status-001")
	}
	return held, nil
}

// classify bounds the classifier call and turns panics into errors.
func (c *Coordinator) classify(ctx context.Context, text string) (result intent.Result, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: classifier panic: %v", ErrGenerationFailed, r)
		}
	}()

	result, err = c.classifier.Classify(ctx, text)
	if err != nil {
		return intent.Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	result.Confidence = clamp01(result.Confidence)
	result.FieldConfidence = clamp01(result.FieldConfidence)
	return result, nil
}

func (c *Coordinator) fail(ctx context.Context, span trace.Span, conversationID string, userMsg *conversation.Message, started time.Time, cause error) (*Turn, error) {
	span.RecordError(cause)
	span.SetStatus(codes.Error, "classification failed")
	c.observer.TurnCompleted(OutcomeFailure, time.Since(started))
	c.log.Warn().Err(cause).Str("conversation_id", conversationID).Msg("turn failed, appending system message")

	reply, err := c.store.Append(ctx, conversationID, conversation.RoleSystem, FailureMessage, nil)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(ctx, Event{Type: EventMessageAppended, ConversationID: conversationID, Message: reply})
	return &Turn{UserMessage: userMsg, Reply: reply, Failed: true}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
