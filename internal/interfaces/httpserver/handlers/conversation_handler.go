package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/domain/generation"
	"jan-server/services/report-api/internal/domain/intent"
	"jan-server/services/report-api/internal/interfaces/httpserver/middleware"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

const (
	eventBuffer       = 64
	keepaliveInterval = 15 * time.Second
)

// ConversationStore reads and clears conversation history.
type ConversationStore interface {
	Get(ctx context.Context, conversationID string) ([]*conversation.Message, error)
	Clear(ctx context.Context, conversationID string) error
	LatestExtraction(ctx context.Context, conversationID string) (intent.Fields, bool, error)
}

// TurnRunner runs conversational turns.
type TurnRunner interface {
	Submit(ctx context.Context, conversationID, text string) (*generation.Turn, error)
	IsGenerating(ctx context.Context, conversationID string) (bool, error)
}

// EventSource delivers coordinator events.
type EventSource interface {
	Subscribe(h generation.Handler) (unsubscribe func())
}

// ConversationHandler exposes HTTP entrypoints for conversations.
type ConversationHandler struct {
	store  ConversationStore
	turns  TurnRunner
	events EventSource
	log    zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(store ConversationStore, turns TurnRunner, events EventSource, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		store:  store,
		turns:  turns,
		events: events,
		log:    log.With().Str("handler", "conversation").Logger(),
	}
}

// Submit handles POST /v1/conversations/:id/messages. It blocks until the
// turn ends and returns both appended messages.
func (h *ConversationHandler) Submit(c *gin.Context) {
	var req requests.SubmitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	turn, err := h.turns.Submit(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, turn)
}

// Messages handles GET /v1/conversations/:id/messages
func (h *ConversationHandler) Messages(c *gin.Context) {
	id := c.Param("id")
	messages, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MessagesResponse{ConversationID: id, Messages: messages})
}

// Clear handles DELETE /v1/conversations/:id/messages
func (h *ConversationHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

// Status handles GET /v1/conversations/:id/status
func (h *ConversationHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	generating, err := h.turns.IsGenerating(ctx, id)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	resp := responses.ConversationStatusResponse{ConversationID: id, Generating: generating}

	fields, ok, err := h.store.LatestExtraction(ctx, id)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	if ok {
		resp.ExtractedFields = &fields
	}
	c.JSON(http.StatusOK, resp)
}

// Events handles GET /v1/conversations/:id/events, streaming coordinator
// events of one conversation as Server Sent Events until the client leaves.
func (h *ConversationHandler) Events(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	queue := make(chan generation.Event, eventBuffer)
	unsubscribe := h.events.Subscribe(func(_ context.Context, evt generation.Event) {
		if evt.ConversationID != id {
			return
		}
		select {
		case queue <- evt:
		default:
			h.log.Warn().Str("conversation_id", id).Str("event", string(evt.Type)).Msg("event stream is behind, dropping event")
		}
	})
	defer unsubscribe()

	flusher, ok := middleware.PrepareSSE(c)
	if !ok {
		platformerrors.WriteInternalError(c, "streaming unsupported")
		return
	}
	c.Status(http.StatusOK)

	generating, err := h.turns.IsGenerating(ctx, id)
	if err != nil {
		h.log.Warn().Err(err).Str("conversation_id", id).Msg("failed to read generation state for stream")
	}
	c.SSEvent(string(generation.EventGeneratingChanged), generation.Event{
		Type:           generation.EventGeneratingChanged,
		ConversationID: id,
		Generating:     generating,
		At:             time.Now().UTC(),
	})
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-queue:
			c.SSEvent(string(evt.Type), evt)
		case <-keepalive.C:
			c.SSEvent("keepalive", gin.H{"at": time.Now().UTC()})
		}
		flusher.Flush()
	}
}
