package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/interfaces/httpserver/requests"
	"jan-server/services/report-api/internal/interfaces/httpserver/responses"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// TemplateHandler exposes HTTP entrypoints for report templates.
type TemplateHandler struct {
	service reporttemplate.Service
	log     zerolog.Logger
}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler(service reporttemplate.Service, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		log:     log.With().Str("handler", "template").Logger(),
	}
}

// Create handles POST /v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req requests.CreateTemplateRequest
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

// List handles GET /v1/templates
func (h *TemplateHandler) List(c *gin.Context) {
	var query requests.ListTemplatesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	filter := query.Filter()
	page, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewTemplatePage(page, total, filter))
}

// Get handles GET /v1/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	found, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, found)
}

// Update handles PATCH /v1/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	var req requests.UpdateTemplateRequest
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

// Delete handles DELETE /v1/templates/:id. Deleting an absent template succeeds.
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}
