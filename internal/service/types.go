package service

import (
	"context"
	"time"

	"dacsanviet/internal/entity"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	SessionTTL    time.Duration
	OTPTTL        time.Duration
	OTPCodeLength int
	OTPRateWindow time.Duration
	OTPRateMax    int
}

func (c AuthConfig) sessionTTL() time.Duration {
	if c.SessionTTL > 0 {
		return c.SessionTTL
	}
	return 7 * 24 * time.Hour
}

func (c AuthConfig) otpTTL() time.Duration {
	if c.OTPTTL > 0 {
		return c.OTPTTL
	}
	return 5 * time.Minute
}

func (c AuthConfig) otpRateWindow() time.Duration {
	if c.OTPRateWindow > 0 {
		return c.OTPRateWindow
	}
	return 5 * time.Minute
}

func (c AuthConfig) otpRateMax() int {
	if c.OTPRateMax > 0 {
		return c.OTPRateMax
	}
	return 3
}

type EmailSender interface {
	SendOTP(ctx context.Context, to string, code string, fullName string, purpose entity.OTPPurpose, payload map[string]string) error
	SendWelcome(ctx context.Context, to string, fullName string, username string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
