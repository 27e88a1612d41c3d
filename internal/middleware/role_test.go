package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/utils"
)

// runAdminRoute sends a request through the full JWTAuth + RequireRole
// chain, the way the operator routes are registered.
func runAdminRoute(t *testing.T, authorization string) int {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/locks/cleanup", nil)
    if authorization != "" {
        req.Header.Set("Authorization", authorization)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    chain := JWTAuth(testSecret)(RequireRole(model.RoleAdmin)(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    }))
    require.NoError(t, chain(c))
    return rec.Code
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 1, "+972501234567", model.RoleAdmin, 1)
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, runAdminRoute(t, "Bearer "+tok.Token))
}

func TestRequireRoleRejectsCustomer(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 2, "+972501234567", model.RoleCustomer, 1)
    require.NoError(t, err)
    assert.Equal(t, http.StatusForbidden, runAdminRoute(t, "Bearer "+tok.Token))
}

func TestRequireRoleRejectsHost(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 3, "+972501234567", model.RoleHost, 1)
    require.NoError(t, err)
    assert.Equal(t, http.StatusForbidden, runAdminRoute(t, "Bearer "+tok.Token))
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/locks/cleanup", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    // No JWTAuth ran, so the context has no role claim at all.
    h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, h(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMultipleAllowed(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/host-applications/1", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("role", model.RoleHost)

    h := RequireRole(model.RoleAdmin, model.RoleHost)(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, h(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}
