package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"railtrace/internal/model"
	"railtrace/pkg/config"
	"railtrace/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func identityEcho(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"username": UsernameFromContext(c),
		"role":     RoleFromContext(c),
	})
}

func runRequest(t *testing.T, h echo.HandlerFunc, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("maker1", model.RoleManufacturer)
	require.NoError(t, err)

	rec := runRequest(t, AuthMiddleware(identityEcho), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maker1")
	assert.Contains(t, rec.Body.String(), model.RoleManufacturer)
}

func TestAuthMiddlewareAcceptsCookieFallback(t *testing.T) {
	token, err := jwtutil.GenerateToken("inspector1", model.RoleFieldInspector)
	require.NoError(t, err)

	rec := runRequest(t, AuthMiddleware(identityEcho), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inspector1")
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	rec := runRequest(t, AuthMiddleware(identityEcho), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	rec := runRequest(t, AuthMiddleware(identityEcho), func(req *http.Request) {
		req.Header.Set("Authorization", "Token abc123")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsTamperedToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("maker1", model.RoleManufacturer)
	require.NoError(t, err)

	rec := runRequest(t, AuthMiddleware(identityEcho), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token+"x")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	guarded := RequireRole(model.RoleWarehouseManager)(identityEcho)

	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", model.RoleWarehouseManager)
	require.NoError(t, guarded(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set("role", model.RoleManufacturer)
	require.NoError(t, guarded(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
