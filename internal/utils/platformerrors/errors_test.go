package platformerrors_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/report-api/internal/utils/platformerrors"
	"jan-server/services/report-api/internal/utils/requestid"
)

var errSentinel = errors.New("report not found")

func TestNewError_CarriesRequestIDAndUnwraps(t *testing.T) {
	ctx := requestid.WithValue(context.Background(), "req-42")
	err := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "lookup failed", errSentinel, "report-get-001")

	assert.Equal(t, "req-42", err.GetRequestID())
	assert.Equal(t, "report-get-001", err.GetUUID())
	assert.ErrorIs(t, err, errSentinel)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.False(t, platformerrors.IsErrorType(errSentinel, platformerrors.ErrorTypeNotFound))
}

func TestAsError_PreservesType(t *testing.T) {
	ctx := context.Background()
	inner := platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "stale version", errSentinel, "repo-001")

	wrapped := platformerrors.AsError(ctx, platformerrors.LayerDomain, inner, "update report")
	assert.Equal(t, platformerrors.ErrorTypeConflict, wrapped.GetErrorType())
	assert.Equal(t, "repo-001", wrapped.GetUUID())
	assert.ErrorIs(t, wrapped, errSentinel)

	plain := platformerrors.AsError(ctx, platformerrors.LayerDomain, errors.New("boom"), "update report")
	assert.Equal(t, platformerrors.ErrorTypeInternal, plain.GetErrorType())

	assert.Nil(t, platformerrors.AsError(ctx, platformerrors.LayerDomain, nil, "noop"))
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType platformerrors.ErrorType
		expected  int
	}{
		{platformerrors.ErrorTypeNotFound, http.StatusNotFound},
		{platformerrors.ErrorTypeValidation, http.StatusBadRequest},
		{platformerrors.ErrorTypeConflict, http.StatusConflict},
		{platformerrors.ErrorTypeInvalidState, http.StatusUnprocessableEntity},
		{platformerrors.ErrorTypeTimeout, http.StatusGatewayTimeout},
		{platformerrors.ErrorTypeDatabaseError, http.StatusInternalServerError},
		{platformerrors.ErrorType("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.expected, platformerrors.ErrorTypeToHTTPStatus(tt.errorType))
		})
	}
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("platform error uses inner message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		err := platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "failed to load report", errSentinel, "report-get-001")

		platformerrors.WriteError(c, err, zerolog.Nop())

		require.Equal(t, http.StatusNotFound, rec.Code)
		var body platformerrors.HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "report not found", body.Error.Message)
		assert.Equal(t, "not_found_error", body.Error.Type)
		assert.Equal(t, "report-get-001", body.Error.Code)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		platformerrors.WriteError(c, errors.New("boom"), zerolog.Nop())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
