package repository

import (
	"context"

	"gorm.io/gorm"
)

// RepositorySet is the slice of the store a verification flow mutates.
type RepositorySet struct {
	Users    UserRepository
	OTPs     OTPRepository
	Sessions SessionRepository
}

// UnitOfWork runs a multi-step mutation against a single database
// transaction. Sequences like verify-code, consume-code, update-credential,
// revoke-sessions either all commit or all roll back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r RepositorySet) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r RepositorySet) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(RepositorySet{
			Users:    NewUserRepository(tx),
			OTPs:     NewOTPRepository(tx),
			Sessions: NewSessionRepository(tx),
		})
	})
}
