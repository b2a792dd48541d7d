package dto

import (
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/service"
)

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	FullName    string  `json:"fullName" validate:"required,min=2,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=8,max=20"`
}

type SendRegistrationOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"omitempty,max=100"`
}

type VerifyRegistrationOTPRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	OTPCode        string  `json:"otpCode" validate:"required,numeric,min=4,max=8"`
	ChallengeToken string  `json:"challengeToken" validate:"omitempty"`
	Username       string  `json:"username" validate:"required,alphanum,min=3,max=50"`
	Password       string  `json:"password" validate:"required,min=6"`
	FullName       string  `json:"fullName" validate:"required,min=2,max=100"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,min=8,max=20"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type LogoutRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type SendPasswordResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email          string `json:"email" validate:"required,email"`
	OTPCode        string `json:"otpCode" validate:"required,numeric,min=4,max=8"`
	ChallengeToken string `json:"challengeToken" validate:"omitempty"`
	NewPassword    string `json:"newPassword" validate:"required,min=6"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	PhoneNumber *string   `json:"phoneNumber"`
	Role        string    `json:"role"`
	AvatarURL   *string   `json:"avatarUrl"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		AvatarURL:   u.AvatarURL,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewUserResponses(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type TokensResponse struct {
	AccessToken      string `json:"accessToken"`
	AccessExpiresIn  int64  `json:"accessExpiresIn"`
	RefreshToken     string `json:"refreshToken"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

type AuthResponse struct {
	User    UserResponse    `json:"user"`
	Tokens  TokensResponse  `json:"tokens"`
	Session *SessionSummary `json:"session,omitempty"`
}

type SessionSummary struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewAuthResponse(res *service.AuthResult) AuthResponse {
	out := AuthResponse{
		User: NewUserResponse(res.User),
		Tokens: TokensResponse{
			AccessToken:      res.Tokens.AccessToken,
			AccessExpiresIn:  res.Tokens.AccessExpiresIn,
			RefreshToken:     res.Tokens.RefreshToken,
			RefreshExpiresIn: res.Tokens.RefreshExpiresIn,
		},
	}
	if res.Session != nil {
		out.Session = &SessionSummary{SessionID: res.Session.SessionID, ExpiresAt: res.Session.ExpiresAt}
	}
	return out
}

type OTPIssuedResponse struct {
	Email          string    `json:"email"`
	ExpiresAt      time.Time `json:"expiresAt"`
	ChallengeToken string    `json:"challengeToken,omitempty"`
}

func NewOTPIssuedResponse(email string, res *service.IssueResult) OTPIssuedResponse {
	return OTPIssuedResponse{Email: email, ExpiresAt: res.ExpiresAt, ChallengeToken: res.Handle}
}
