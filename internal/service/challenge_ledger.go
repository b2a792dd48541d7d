package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"
	"dacsanviet/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const metadataUserIDKey = "user_id"

// LedgerChallengeTransport keeps one-time codes in the otp_codes table.
// Issuance retires every outstanding code for the same (email, purpose) pair,
// rate limiting counts rows in the trailing window, and a failed mail send
// invalidates the row it just wrote.
type LedgerChallengeTransport struct {
	otps   repository.OTPRepository
	email  EmailSender
	clock  Clock
	config AuthConfig
	log    *logrus.Logger
}

func NewLedgerChallengeTransport(
	otps repository.OTPRepository,
	email EmailSender,
	clock Clock,
	config AuthConfig,
	log *logrus.Logger,
) *LedgerChallengeTransport {
	return &LedgerChallengeTransport{
		otps:   otps,
		email:  email,
		clock:  clock,
		config: config,
		log:    log,
	}
}

func (t *LedgerChallengeTransport) Issue(ctx context.Context, ch Challenge, recipientName string) (*IssueResult, error) {
	now := t.clock.Now()

	count, err := t.otps.CountSince(ctx, ch.Email, ch.Purpose, now.Add(-t.config.otpRateWindow()))
	if err != nil {
		t.log.WithError(err).Error("otp rate check failed")
		return nil, ErrDependency
	}
	if count >= int64(t.config.otpRateMax()) {
		return nil, ErrRateLimited
	}

	code, err := utils.GenerateOTPCode(t.config.OTPCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp code: %w", err)
	}

	record := &entity.OTPCode{
		Email:     ch.Email,
		Code:      code,
		Purpose:   ch.Purpose,
		ExpiresAt: now.Add(t.config.otpTTL()),
	}
	if metadata := bindingMetadata(ch); metadata != nil {
		record.Metadata = metadata
	}

	if err := t.otps.IssueExclusive(ctx, record); err != nil {
		t.log.WithError(err).Error("otp issuance failed")
		return nil, ErrDependency
	}

	if err := t.email.SendOTP(ctx, ch.Email, code, recipientName, ch.Purpose, ch.Payload); err != nil {
		// The row is already committed; retire it so the undelivered code
		// can never be redeemed.
		if invErr := t.otps.Invalidate(ctx, record.ID); invErr != nil {
			t.log.WithError(invErr).Error("compensating otp invalidation failed")
		}
		t.log.WithError(err).WithField("purpose", ch.Purpose).Error("otp email send failed")
		return nil, ErrDependency
	}

	return &IssueResult{ExpiresAt: record.ExpiresAt}, nil
}

func (t *LedgerChallengeTransport) Verify(ctx context.Context, ch Challenge, code string, _ string) (*VerifiedChallenge, error) {
	record, err := t.otps.FindValid(ctx, ch.Email, code, ch.Purpose, t.clock.Now())
	if err != nil {
		t.log.WithError(err).Error("otp lookup failed")
		return nil, ErrDependency
	}
	if record == nil {
		return nil, ErrInvalidOTP
	}

	payload, err := decodeMetadata(record.Metadata)
	if err != nil {
		return nil, ErrInvalidOTP
	}
	if bound := payload[metadataUserIDKey]; bound != "" && bound != ch.UserID {
		return nil, ErrInvalidOTP
	}
	delete(payload, metadataUserIDKey)

	id := record.ID
	return &VerifiedChallenge{
		Payload: payload,
		consume: func(ctx context.Context, r repository.RepositorySet, now time.Time) error {
			consumed, err := r.OTPs.MarkUsed(ctx, id, now)
			if err != nil {
				return err
			}
			if !consumed {
				// Another verification spent the code between our lookup
				// and this update. Fail the transaction so the guarded
				// mutation does not apply twice.
				return ErrInvalidOTP
			}
			return nil
		},
	}, nil
}

func bindingMetadata(ch Challenge) datatypes.JSON {
	if ch.UserID == "" && len(ch.Payload) == 0 {
		return nil
	}
	values := map[string]string{}
	for key, value := range ch.Payload {
		values[key] = value
	}
	if ch.UserID != "" {
		values[metadataUserIDKey] = ch.UserID
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(encoded)
}

func decodeMetadata(metadata datatypes.JSON) (map[string]string, error) {
	if len(metadata) == 0 {
		return map[string]string{}, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(metadata, &values); err != nil {
		return nil, err
	}
	return values, nil
}
