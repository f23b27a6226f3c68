package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// ReportHandler exposes HTTP entrypoints for justification reports.
type ReportHandler struct {
	service report.Service
	log     zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service report.Service, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log.With().Str("handler", "report").Logger(),
	}
}

// Create handles POST /v1/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req requests.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.Params())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List handles GET /v1/reports. With ?q= it searches reference numbers and
// titles instead of filtering.
func (h *ReportHandler) List(c *gin.Context) {
	var query requests.ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	if query.Q != "" {
		found, err := h.service.Search(c.Request.Context(), query.Q)
		if err != nil {
			platformerrors.WriteError(c, err, h.log)
			return
		}
		c.JSON(http.StatusOK, responses.NewSearchResult(found, query.Q))
		return
	}

	filter := query.Filter()
	page, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewReportPage(page, total, filter))
}

// Get handles GET /v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	found, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, found)
}

// Update handles PATCH /v1/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	var req requests.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Params())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateStatus handles POST /v1/reports/:id/status
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	var req requests.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.ExpectedVersion)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SubmitForReview handles POST /v1/reports/:id/submit
func (h *ReportHandler) SubmitForReview(c *gin.Context) {
	var req requests.SubmitForReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	updated, err := h.service.SubmitForReview(c.Request.Context(), c.Param("id"), req.ExpectedVersion)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/reports/:id. Deleting an absent report succeeds.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}
