package dto

import (
	"time"

	"dacsanviet/internal/entity"
)

type AdminUpdateUserRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=8,max=20"`
	Role        *string `json:"role" validate:"omitempty,oneof=USER STAFF ADMIN"`
	IsActive    *bool   `json:"isActive"`
}

type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewSessionResponse(s *entity.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		SessionID: s.SessionID,
		Username:  s.User.Username,
		Email:     s.User.Email,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func NewSessionResponses(sessions []entity.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, NewSessionResponse(&sessions[i]))
	}
	return out
}
