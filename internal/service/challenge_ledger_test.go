package service

import (
	"context"
	"io"
	"testing"
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerTransport(t *testing.T) (*LedgerChallengeTransport, *fakeOTPRepo, *fakeEmailSender, *fixedClock, fakeUnitOfWork) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	clock := newFixedClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	otps := newFakeOTPRepo(clock)
	email := &fakeEmailSender{}
	transport := NewLedgerChallengeTransport(otps, email, clock, AuthConfig{}, logger)
	uow := fakeUnitOfWork{repos: repository.RepositorySet{OTPs: otps}}
	return transport, otps, email, clock, uow
}

func TestInterleavedVerificationsConsumeOnce(t *testing.T) {
	transport, otps, email, clock, uow := newLedgerTransport(t)
	ctx := context.Background()

	ch := Challenge{Email: "alice@example.com", Purpose: entity.PurposePasswordReset}
	_, err := transport.Issue(ctx, ch, "Alice")
	require.NoError(t, err)
	code := email.lastOTP().Code

	// Both verifications happen before either side consumes.
	first, err := transport.Verify(ctx, ch, code, "")
	require.NoError(t, err)
	second, err := transport.Verify(ctx, ch, code, "")
	require.NoError(t, err)

	err = uow.Do(ctx, func(r repository.RepositorySet) error {
		return first.Consume(ctx, r, clock.Now())
	})
	require.NoError(t, err)

	err = uow.Do(ctx, func(r repository.RepositorySet) error {
		return second.Consume(ctx, r, clock.Now())
	})
	assert.ErrorIs(t, err, ErrInvalidOTP)

	codes := otps.all()
	require.Len(t, codes, 1)
	assert.Equal(t, entity.OTPStatusConsumed, codes[0].Status(clock.Now()))
}

func TestConsumedCodeStaysConsumed(t *testing.T) {
	transport, otps, email, clock, uow := newLedgerTransport(t)
	ctx := context.Background()

	ch := Challenge{Email: "alice@example.com", Purpose: entity.PurposeEmailUpdate}
	_, err := transport.Issue(ctx, ch, "Alice")
	require.NoError(t, err)

	verified, err := transport.Verify(ctx, ch, email.lastOTP().Code, "")
	require.NoError(t, err)

	err = uow.Do(ctx, func(r repository.RepositorySet) error {
		return verified.Consume(ctx, r, clock.Now())
	})
	require.NoError(t, err)
	firstUsedAt := *otps.all()[0].UsedAt

	clock.Advance(time.Minute)
	err = uow.Do(ctx, func(r repository.RepositorySet) error {
		return verified.Consume(ctx, r, clock.Now())
	})
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, firstUsedAt, *otps.all()[0].UsedAt)
}
