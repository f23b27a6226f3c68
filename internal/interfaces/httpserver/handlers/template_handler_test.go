package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// MockTemplateService is a mock implementation of reporttemplate.Service for testing.
type MockTemplateService struct {
	CreateFunc func(ctx context.Context, params reporttemplate.CreateParams) (*reporttemplate.Template, error)
	GetFunc    func(ctx context.Context, id string) (*reporttemplate.Template, error)
	UpdateFunc func(ctx context.Context, id string, params reporttemplate.UpdateParams) (*reporttemplate.Template, error)
	DeleteFunc func(ctx context.Context, id string) error
	ListFunc   func(ctx context.Context, filter *reporttemplate.Filter) ([]*reporttemplate.Template, int64, error)
}

func (m *MockTemplateService) Create(ctx context.Context, params reporttemplate.CreateParams) (*reporttemplate.Template, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockTemplateService) Get(ctx context.Context, id string) (*reporttemplate.Template, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTemplateService) Update(ctx context.Context, id string, params reporttemplate.UpdateParams) (*reporttemplate.Template, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockTemplateService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTemplateService) List(ctx context.Context, filter *reporttemplate.Filter) ([]*reporttemplate.Template, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func setupTemplateTestRouter(handler *handlers.TemplateHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1/templates")
	{
		v1.POST("", handler.Create)
		v1.GET("", handler.List)
		v1.GET("/:id", handler.Get)
		v1.PATCH("/:id", handler.Update)
		v1.DELETE("/:id", handler.Delete)
	}
	return r
}

func TestTemplateHandler_CreatePassesStructure(t *testing.T) {
	var got reporttemplate.CreateParams
	mockService := &MockTemplateService{
		CreateFunc: func(ctx context.Context, params reporttemplate.CreateParams) (*reporttemplate.Template, error) {
			got = params
			return &reporttemplate.Template{ID: "tpl_1", Name: params.Name, Version: 1}, nil
		},
	}
	router := setupTemplateTestRouter(handlers.NewTemplateHandler(mockService, zerolog.Nop()))

	w := serve(router, http.MethodPost, "/v1/templates", `{
		"name": "Procurement",
		"category": "procurement",
		"isActive": false,
		"fields": [{"id": "qty", "name": "Quantity", "type": "number", "defaultValue": 1}],
		"structure": {
			"sections": [{"id": "s1", "title": "Items", "order": 1, "fieldIds": ["qty"]}],
			"headerConfig": {"showDate": true, "customText": "HEADER"}
		}
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, report.CategoryProcurement, got.Category)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, reporttemplate.FieldTypeNumber, got.Fields[0].Type)
	assert.JSONEq(t, "1", string(got.Fields[0].DefaultValue))
	assert.Equal(t, []string{"qty"}, got.Structure.Sections[0].FieldIDs)
	assert.True(t, got.Structure.Header.ShowDate)
	assert.Equal(t, "HEADER", got.Structure.Header.CustomText)
}

func TestTemplateHandler_ListQuery(t *testing.T) {
	var got *reporttemplate.Filter
	mockService := &MockTemplateService{
		ListFunc: func(ctx context.Context, filter *reporttemplate.Filter) ([]*reporttemplate.Template, int64, error) {
			got = filter
			return nil, 0, nil
		},
	}
	router := setupTemplateTestRouter(handlers.NewTemplateHandler(mockService, zerolog.Nop()))

	w := serve(router, http.MethodGet, "/v1/templates?organization=org-1&category=services&active=true&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	require.NotNil(t, got.OrganizationID)
	assert.Equal(t, "org-1", *got.OrganizationID)
	require.NotNil(t, got.Category)
	assert.Equal(t, report.CategoryServices, *got.Category)
	assert.True(t, got.ActiveOnly)
	assert.Equal(t, 5, got.Limit)
	assert.JSONEq(t, `{"data":[],"total":0,"limit":5}`, w.Body.String())

	w = serve(router, http.MethodGet, "/v1/templates?category=gardening", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandler_UpdateNotFound(t *testing.T) {
	mockService := &MockTemplateService{
		UpdateFunc: func(ctx context.Context, id string, params reporttemplate.UpdateParams) (*reporttemplate.Template, error) {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"failed to update template", reporttemplate.ErrNotFound, "template-update-001", nil)
		},
	}
	router := setupTemplateTestRouter(handlers.NewTemplateHandler(mockService, zerolog.Nop()))

	w := serve(router, http.MethodPatch, "/v1/templates/tpl_missing", `{"name": "Renamed"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "template-update-001", decodeError(t, w).Error.Code)
}
