package handler

import (
	"errors"
	"net/http"

	"dacsanviet/internal/dto"
	"dacsanviet/internal/entity"
	"dacsanviet/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Service  *service.UserService
	Validate *validator.Validate
}

func NewUserHandler(svc *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{Service: svc, Validate: validate}
}

func (h *UserHandler) List(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("users", dto.NewUserResponses(users)))
}

func (h *UserHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	limit, _ := parseLimitOffset(c)
	users, err := h.Service.Search(c.Request().Context(), query, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("users", dto.NewUserResponses(users)))
}

func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.Service.Stats(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("user stats", stats))
}

func (h *UserHandler) ByRole(c echo.Context) error {
	role := entity.UserRole(c.Param("role"))
	limit, _ := parseLimitOffset(c)
	users, err := h.Service.FindByRole(c.Request().Context(), role, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("users", dto.NewUserResponses(users)))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	user, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("user", dto.NewUserResponse(user)))
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	var req dto.AdminUpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.AdminUserUpdateInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		input.Role = &role
	}
	user, err := h.Service.Update(c.Request().Context(), id, input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("user updated", dto.NewUserResponse(user)))
}

func (h *UserHandler) ToggleStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	user, err := h.Service.ToggleStatus(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("user status updated", dto.NewUserResponse(user)))
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	if err := h.Service.SoftDelete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("user deactivated", nil))
}

func (h *UserHandler) Sessions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	sessions, err := h.Service.SessionsOfUser(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("sessions", dto.NewSessionResponses(sessions)))
}

func (h *UserHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
