package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/draft"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// DraftService manages the report draft of each conversation.
type DraftService interface {
	Get(conversationID string) draft.Session
	Edit(ctx context.Context, conversationID string, edit draft.Edit) (draft.Session, error)
	Reset(conversationID string)
	Save(ctx context.Context, conversationID string) (*report.Report, error)
}

// DraftHandler exposes HTTP entrypoints for conversation drafts.
type DraftHandler struct {
	service DraftService
	log     zerolog.Logger
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(service DraftService, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		service: service,
		log:     log.With().Str("handler", "draft").Logger(),
	}
}

// Get handles GET /v1/conversations/:id/draft
func (h *DraftHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Get(c.Param("id")))
}

// Edit handles PATCH /v1/conversations/:id/draft
func (h *DraftHandler) Edit(c *gin.Context) {
	var req requests.EditDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	sess, err := h.service.Edit(c.Request.Context(), c.Param("id"), req.Edit())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Reset handles DELETE /v1/conversations/:id/draft
func (h *DraftHandler) Reset(c *gin.Context) {
	h.service.Reset(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Save handles POST /v1/conversations/:id/draft/save
func (h *DraftHandler) Save(c *gin.Context) {
	created, err := h.service.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, created)
}
