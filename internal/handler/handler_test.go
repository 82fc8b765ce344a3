package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"railtrace/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation", service.Validationf("batch_size must be positive"), http.StatusBadRequest, "validation_error"},
		{"conflict", service.Conflictf("already resolved"), http.StatusConflict, "conflict_error"},
		{"not found", service.NotFoundf("component not found"), http.StatusNotFound, "not_found_error"},
		{"state", service.Statef("not installed"), http.StatusUnprocessableEntity, "state_error"},
		{"transient", service.Transientf(nil, "storage unavailable"), http.StatusServiceUnavailable, "transient_error"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, serviceError(c, tt.err))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.kind)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}
