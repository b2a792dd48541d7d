package handler

import (
	"errors"
	"net/http"

	"dacsanviet/api/middleware"
	"dacsanviet/internal/dto"
	"dacsanviet/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	Service  *service.ProfileService
	Validate *validator.Validate
}

func NewProfileHandler(svc *service.ProfileService, validate *validator.Validate) *ProfileHandler {
	return &ProfileHandler{Service: svc, Validate: validate}
}

func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	user, err := h.Service.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("profile", dto.NewUserResponse(user)))
}

func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.UpdateProfileRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.UpdateProfileInput{FullName: req.FullName, PhoneNumber: req.PhoneNumber}
	user, err := h.Service.UpdateProfile(c.Request().Context(), userID, input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("profile updated", dto.NewUserResponse(user)))
}

func (h *ProfileHandler) SetAvatar(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SetAvatarRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	user, err := h.Service.SetAvatar(c.Request().Context(), userID, req.AvatarURL)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("avatar updated", dto.NewUserResponse(user)))
}

func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.ChangePasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("password changed", nil))
}

func (h *ProfileHandler) SendPasswordChangeOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SendPasswordChangeOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.SendPasswordChangeOTP(c.Request().Context(), userID, req.CurrentPassword)
	if err != nil {
		return writeServiceError(c, err)
	}
	email, _ := middleware.EmailFromContext(c)
	return c.JSON(http.StatusOK, dto.OK("verification code sent", dto.NewOTPIssuedResponse(email, result)))
}

func (h *ProfileHandler) VerifyPasswordChangeOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.VerifyPasswordChangeOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	err := h.Service.VerifyPasswordChangeOTP(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword, req.OTPCode, req.ChallengeToken)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("password changed", nil))
}

func (h *ProfileHandler) SendEmailUpdateOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SendEmailUpdateOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.SendEmailUpdateOTP(c.Request().Context(), userID, req.NewEmail)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("verification code sent to new address", dto.NewOTPIssuedResponse(req.NewEmail, result)))
}

func (h *ProfileHandler) VerifyEmailUpdate(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.VerifyEmailUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	user, err := h.Service.VerifyEmailUpdate(c.Request().Context(), userID, req.NewEmail, req.OTPCode, req.ChallengeToken)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("email updated", dto.NewUserResponse(user)))
}

func (h *ProfileHandler) SendPhoneUpdateOTP(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SendPhoneUpdateOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.SendPhoneUpdateOTP(c.Request().Context(), userID, req.NewPhoneNumber)
	if err != nil {
		return writeServiceError(c, err)
	}
	email, _ := middleware.EmailFromContext(c)
	return c.JSON(http.StatusOK, dto.OK("verification code sent", dto.NewOTPIssuedResponse(email, result)))
}

func (h *ProfileHandler) VerifyPhoneUpdate(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.VerifyPhoneUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	user, err := h.Service.VerifyPhoneUpdate(c.Request().Context(), userID, req.NewPhoneNumber, req.OTPCode, req.ChallengeToken)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("phone number updated", dto.NewUserResponse(user)))
}

func (h *ProfileHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
