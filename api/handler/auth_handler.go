package handler

import (
	"errors"
	"net/http"

	"dacsanviet/internal/dto"
	"dacsanviet/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

// Register creates an account without an OTP round-trip. The flow the
// frontend uses is SendRegistrationOTP + VerifyRegistrationOTP; this one
// stays for tooling and seeding.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}
	user, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OK("account created", dto.NewUserResponse(user)))
}

func (h *AuthHandler) SendRegistrationOTP(c echo.Context) error {
	var req dto.SendRegistrationOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.SendRegistrationOTP(c.Request().Context(), req.Email, req.FullName)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("verification code sent", dto.NewOTPIssuedResponse(req.Email, result)))
}

func (h *AuthHandler) VerifyRegistrationOTP(c echo.Context) error {
	var req dto.VerifyRegistrationOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.VerifyRegistrationInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Code:        req.OTPCode,
		Handle:      req.ChallengeToken,
	}
	result, err := h.Service.VerifyRegistrationOTP(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OK("account created", dto.NewAuthResponse(result)))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.LoginInput{
		EmailOrUsername: req.EmailOrUsername,
		Password:        req.Password,
		IPAddress:       stringPtr(c.RealIP()),
		UserAgent:       stringPtr(c.Request().UserAgent()),
	}
	result, err := h.Service.Login(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("login successful", dto.NewAuthResponse(result)))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req dto.LogoutRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.Logout(c.Request().Context(), req.SessionID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("logged out", nil))
}

func (h *AuthHandler) CheckSession(c echo.Context) error {
	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		return writeError(c, http.StatusBadRequest, errors.New("sessionId is required"))
	}
	session, err := h.Service.CheckSession(c.Request().Context(), sessionID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("session is valid", dto.NewSessionResponse(session)))
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	var req dto.LogoutRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	revoked, err := h.Service.LogoutAll(c.Request().Context(), req.SessionID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("logged out everywhere", map[string]int64{"revokedSessions": revoked}))
}

func (h *AuthHandler) SendPasswordResetOTP(c echo.Context) error {
	var req dto.SendPasswordResetOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.SendPasswordResetOTP(c.Request().Context(), req.Email)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("password reset code sent", dto.NewOTPIssuedResponse(req.Email, result)))
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.PasswordResetInput{
		Email:       req.Email,
		Code:        req.OTPCode,
		Handle:      req.ChallengeToken,
		NewPassword: req.NewPassword,
	}
	if err := h.Service.ResetPasswordWithOTP(c.Request().Context(), input); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("password has been reset", nil))
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
