package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dacsanviet/internal/dto"
	"dacsanviet/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrSamePassword, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrInvalidOTP, http.StatusUnauthorized},
		{service.ErrInvalidToken, http.StatusUnauthorized},
		{service.ErrInvalidSession, http.StatusUnauthorized},
		{service.ErrInactiveAccount, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrUsernameTaken, http.StatusConflict},
		{service.ErrRateLimited, http.StatusTooManyRequests},
		{service.ErrDependency, http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, writeServiceError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)

		var body dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Message)
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeServiceError(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Message)
}
