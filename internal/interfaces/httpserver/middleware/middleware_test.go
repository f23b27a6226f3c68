package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"jan-server/services/report-api/internal/interfaces/httpserver/middleware"
	"jan-server/services/report-api/internal/utils/requestid"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(zerolog.Nop()), middleware.Metrics())
	r.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, requestid.FromContext(c.Request.Context()))
	})
	return r
}

func TestRequestIDIsGeneratedAndPropagated(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	id := w.Header().Get(requestid.Header)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(requestid.Header, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(requestid.Header))
	assert.Equal(t, "req-42", w.Body.String())
}
