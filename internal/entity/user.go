package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleStaff UserRole = "STAFF"
	UserRoleAdmin UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FullName     string    `gorm:"type:varchar(100);not null"`
	PhoneNumber  *string   `gorm:"type:varchar(20)"`
	Role         UserRole  `gorm:"type:user_role;default:'USER';not null"`
	AvatarURL    *string   `gorm:"type:text"`

	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []Session
}
