package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"dacsanviet/internal/utils"

	"github.com/sirupsen/logrus"
)

// TokenChallengeTransport carries the challenge on the client instead of in
// the store: Issue hands back a short-lived signed token embedding the hashed
// code and the flow's binding payload, and Verify checks the echoed token
// against the code the caller types in. Nothing is persisted, so row-count
// rate limiting does not apply in this mode; the per-IP limiter in front of
// the OTP routes is the only throttle.
type TokenChallengeTransport struct {
	tokens utils.TokenManager
	email  EmailSender
	clock  Clock
	config AuthConfig
	log    *logrus.Logger
}

func NewTokenChallengeTransport(
	tokens utils.TokenManager,
	email EmailSender,
	clock Clock,
	config AuthConfig,
	log *logrus.Logger,
) *TokenChallengeTransport {
	return &TokenChallengeTransport{
		tokens: tokens,
		email:  email,
		clock:  clock,
		config: config,
		log:    log,
	}
}

func (t *TokenChallengeTransport) Issue(ctx context.Context, ch Challenge, recipientName string) (*IssueResult, error) {
	code, err := utils.GenerateOTPCode(t.config.OTPCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp code: %w", err)
	}

	handle, ttl, err := t.tokens.IssuePurposeToken(
		ch.UserID, ch.Email, string(ch.Purpose), utils.HashToken(code), ch.Payload)
	if err != nil {
		return nil, fmt.Errorf("sign challenge token: %w", err)
	}

	if err := t.email.SendOTP(ctx, ch.Email, code, recipientName, ch.Purpose, ch.Payload); err != nil {
		t.log.WithError(err).WithField("purpose", ch.Purpose).Error("otp email send failed")
		return nil, ErrDependency
	}

	return &IssueResult{Handle: handle, ExpiresAt: t.clock.Now().Add(ttl)}, nil
}

func (t *TokenChallengeTransport) Verify(_ context.Context, ch Challenge, code string, handle string) (*VerifiedChallenge, error) {
	if handle == "" {
		return nil, ErrInvalidOTP
	}
	claims, err := t.tokens.ParsePurposeToken(handle, string(ch.Purpose))
	if err != nil {
		return nil, ErrInvalidOTP
	}

	// Every claim must match: identity binding, challenged email, and the
	// code itself. The token only ever held the code's hash.
	if claims.Subject != ch.UserID || claims.Email != ch.Email {
		return nil, ErrInvalidOTP
	}
	hash := utils.HashToken(code)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(claims.CodeHash)) != 1 {
		return nil, ErrInvalidOTP
	}

	payload := map[string]string{}
	for key, value := range claims.Payload {
		payload[key] = value
	}
	return &VerifiedChallenge{Payload: payload}, nil
}
