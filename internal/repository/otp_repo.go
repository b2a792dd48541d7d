package repository

import (
	"context"
	"errors"
	"time"

	"dacsanviet/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPRepository interface {
	Create(ctx context.Context, code *entity.OTPCode) error
	// IssueExclusive invalidates every outstanding code for the same
	// (email, purpose) pair and inserts the new one in a single transaction,
	// so two concurrent issuances cannot both leave a valid code behind.
	IssueExclusive(ctx context.Context, code *entity.OTPCode) error
	FindValid(ctx context.Context, email, code string, purpose entity.OTPPurpose, now time.Time) (*entity.OTPCode, error)
	// MarkUsed consumes the code. The bool reports whether this call did the
	// consuming; false means another verification got there first.
	MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	Invalidate(ctx context.Context, id uuid.UUID) error
	InvalidateOutstanding(ctx context.Context, email string, purpose entity.OTPPurpose) (int64, error)
	CountSince(ctx context.Context, email string, purpose entity.OTPPurpose, since time.Time) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, code *entity.OTPCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *otpRepository) IssueExclusive(ctx context.Context, code *entity.OTPCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entity.OTPCode{}).
			Where("email = ? AND purpose = ? AND is_used = false", code.Email, code.Purpose).
			Update("is_used", true).Error
		if err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// FindValid returns the newest matching unused, unexpired row. Newest-first
// matters: if a concurrent issuance ever left duplicates, only the latest
// code is honored.
func (r *otpRepository) FindValid(ctx context.Context, email, code string, purpose entity.OTPPurpose, now time.Time) (*entity.OTPCode, error) {
	var record entity.OTPCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND otp_code = ? AND purpose = ? AND is_used = false AND expires_at > ?",
			email, code, purpose, now).
		Order("created_at DESC").
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

// The used_at IS NULL guard makes the update first-wins: two interleaved
// verifications of the same code race here, and only the one whose UPDATE
// touches the row may proceed with its guarded mutation.
func (r *otpRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Updates(map[string]any{"is_used": true, "used_at": &now})
	return result.RowsAffected > 0, result.Error
}

// Invalidate retires a code without recording a consumption. Used as the
// compensating step when the mail transport fails after the row was written.
func (r *otpRepository) Invalidate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("id = ?", id).
		Update("is_used", true).
		Error
}

func (r *otpRepository) InvalidateOutstanding(ctx context.Context, email string, purpose entity.OTPPurpose) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("email = ? AND purpose = ? AND is_used = false", email, purpose).
		Update("is_used", true)
	return result.RowsAffected, result.Error
}

func (r *otpRepository) CountSince(ctx context.Context, email string, purpose entity.OTPPurpose, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("email = ? AND purpose = ? AND created_at > ?", email, purpose, since).
		Count(&count).Error
	return count, err
}

// SweepExpired removes rows past their expiry and consumed rows older than a
// day, matching the hourly background maintenance cadence.
func (r *otpRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR (is_used = true AND used_at < ?)", now, now.Add(-24*time.Hour)).
		Delete(&entity.OTPCode{})
	return result.RowsAffected, result.Error
}
