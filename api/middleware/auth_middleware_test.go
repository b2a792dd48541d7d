package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dacsanviet/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *utils.TokenManager {
	return &utils.TokenManager{
		Secret:         []byte("test-secret"),
		Issuer:         "test",
		AccessTokenTTL: time.Hour,
	}
}

func runRequireAuth(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	m := AuthMiddleware{Tokens: testTokens()}
	handler := m.RequireAuth(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestRequireAuthAcceptsAccessToken(t *testing.T) {
	userID := uuid.New()
	signed, _, err := testTokens().IssueAccessToken(userID.String(), "a@example.com", "alice", "USER")
	require.NoError(t, err)

	rec, c, err := runRequireAuth(t, "Bearer "+signed)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	gotID, ok := UserIDFromContext(c)
	require.True(t, ok)
	assert.Equal(t, userID, gotID)

	role, ok := RoleFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "USER", role)

	email, ok := EmailFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", email)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	_, _, err := runRequireAuth(t, "")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	signed, _, err := testTokens().IssueRefreshToken(uuid.NewString(), "a@example.com", "alice", "USER")
	require.NoError(t, err)

	_, _, err = runRequireAuth(t, "Bearer "+signed)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAuthRejectsGarbage(t *testing.T) {
	_, _, err := runRequireAuth(t, "Bearer not-a-token")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, allowed ...string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if role != "" {
			c.Set(contextRoleKey, role)
		}
		handler := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		return handler(c)
	}

	assert.NoError(t, run("ADMIN", "ADMIN"))
	assert.NoError(t, run("STAFF", "ADMIN", "STAFF"))

	err := run("USER", "ADMIN")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	err = run("", "ADMIN")
	httpErr, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
