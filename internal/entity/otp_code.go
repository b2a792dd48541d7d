package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OTPPurpose string

const (
	PurposeRegistration   OTPPurpose = "registration"
	PurposePasswordReset  OTPPurpose = "password_reset"
	PurposeEmailUpdate    OTPPurpose = "email_update"
	PurposePhoneUpdate    OTPPurpose = "phone_update"
	PurposePasswordChange OTPPurpose = "password_change"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeEmailUpdate,
		PurposePhoneUpdate, PurposePasswordChange:
		return true
	}
	return false
}

// OTPStatus is derived, not stored. A row with is_used set but no used_at was
// invalidated by a later issuance rather than consumed by a verification.
type OTPStatus string

const (
	OTPStatusValid       OTPStatus = "valid"
	OTPStatusConsumed    OTPStatus = "consumed"
	OTPStatusInvalidated OTPStatus = "invalidated"
	OTPStatusExpired     OTPStatus = "expired"
)

type OTPCode struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email   string     `gorm:"type:varchar(255);not null;index:idx_otp_email_purpose"`
	Code    string     `gorm:"column:otp_code;type:varchar(10);not null"`
	Purpose OTPPurpose `gorm:"type:otp_purpose;not null;index:idx_otp_email_purpose"`

	ExpiresAt time.Time
	IsUsed    bool `gorm:"default:false"`
	UsedAt    *time.Time

	Metadata datatypes.JSON

	CreatedAt time.Time
}

func (o *OTPCode) Status(now time.Time) OTPStatus {
	switch {
	case o.IsUsed && o.UsedAt != nil:
		return OTPStatusConsumed
	case o.IsUsed:
		return OTPStatusInvalidated
	case !now.Before(o.ExpiresAt):
		return OTPStatusExpired
	}
	return OTPStatusValid
}
