package service

import (
	"context"
	"time"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"
)

// Challenge describes one verification attempt: which email must prove
// control, for what purpose, optionally bound to an existing user and to
// auxiliary data the flow applies on success (new email, new phone).
type Challenge struct {
	Email   string
	Purpose entity.OTPPurpose
	UserID  string
	Payload map[string]string
}

// IssueResult is what the caller gets back after the code was delivered.
// Handle is empty for the persisted ledger transport; the stateless transport
// returns the signed token the client must echo back on verification.
type IssueResult struct {
	Handle    string
	ExpiresAt time.Time
}

// VerifiedChallenge is a challenge that passed every check but has not been
// consumed yet. Consume runs inside the verifying flow's transaction so the
// code cannot be retired without the guarded mutation committing.
type VerifiedChallenge struct {
	Payload map[string]string

	consume func(ctx context.Context, r repository.RepositorySet, now time.Time) error
}

func (v *VerifiedChallenge) Consume(ctx context.Context, r repository.RepositorySet, now time.Time) error {
	if v.consume == nil {
		return nil
	}
	return v.consume(ctx, r, now)
}

// ChallengeTransport issues and verifies one-time codes. Exactly one
// implementation is active per deployment: the persisted OTP ledger or the
// stateless signed-token carrier. They are never mixed.
type ChallengeTransport interface {
	Issue(ctx context.Context, ch Challenge, recipientName string) (*IssueResult, error)
	Verify(ctx context.Context, ch Challenge, code string, handle string) (*VerifiedChallenge, error)
}
