package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	SessionID string `gorm:"type:varchar(255);uniqueIndex;not null"`

	IPAddress *string `gorm:"type:varchar(45)"`
	UserAgent *string `gorm:"type:text"`

	ExpiresAt time.Time
	IsActive  bool `gorm:"default:true"`

	CreatedAt time.Time
}

func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}
