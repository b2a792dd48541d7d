package handler

import (
	"errors"
	"net/http"

	"dacsanviet/internal/dto"
	"dacsanviet/internal/service"

	"github.com/labstack/echo/v4"
)

// SessionHandler exposes the admin view over login sessions plus a manual
// trigger for the maintenance sweep.
type SessionHandler struct {
	Service *service.UserService
	Sweeper *service.Sweeper
}

func NewSessionHandler(svc *service.UserService, sweeper *service.Sweeper) *SessionHandler {
	return &SessionHandler{Service: svc, Sweeper: sweeper}
}

func (h *SessionHandler) List(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	sessions, err := h.Service.AllSessions(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("sessions", dto.NewSessionResponses(sessions)))
}

func (h *SessionHandler) Stats(c echo.Context) error {
	stats, err := h.Service.SessionStats(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("session stats", stats))
}

func (h *SessionHandler) ByIP(c echo.Context) error {
	ip := c.Param("ip")
	limit, _ := parseLimitOffset(c)
	sessions, err := h.Service.SessionsByIP(c.Request().Context(), ip, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("sessions", dto.NewSessionResponses(sessions)))
}

func (h *SessionHandler) Revoke(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return writeError(c, http.StatusBadRequest, errors.New("sessionId is required"))
	}
	if err := h.Service.RevokeSession(c.Request().Context(), sessionID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("session revoked", nil))
}

func (h *SessionHandler) Cleanup(c echo.Context) error {
	if h.Sweeper != nil {
		h.Sweeper.SweepOnce(c.Request().Context())
	}
	return c.JSON(http.StatusOK, dto.OK("cleanup completed", nil))
}
