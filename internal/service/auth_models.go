package service

import (
	"time"

	"dacsanviet/internal/entity"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber *string
}

type VerifyRegistrationInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber *string
	Code        string
	Handle      string
}

type LoginInput struct {
	EmailOrUsername string
	Password        string
	IPAddress       *string
	UserAgent       *string
}

type PasswordResetInput struct {
	Email       string
	Code        string
	Handle      string
	NewPassword string
}

type TokenPair struct {
	AccessToken      string
	AccessExpiresIn  int64
	RefreshToken     string
	RefreshExpiresIn int64
}

type SessionInfo struct {
	SessionID string
	ExpiresAt time.Time
}

type AuthResult struct {
	User    *entity.User
	Tokens  TokenPair
	Session *SessionInfo
}
