package service

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already in use")

	// ErrInvalidCredentials deliberately covers unknown identity and wrong
	// password with one message, so callers cannot probe which part failed.
	ErrInvalidCredentials = errors.New("email/username or password incorrect")

	ErrInvalidOTP      = errors.New("otp code is invalid or expired")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidSession  = errors.New("session is invalid or expired")
	ErrInactiveAccount = errors.New("account is deactivated")
	ErrRateLimited     = errors.New("too many requests, try again later")
	ErrSamePassword    = errors.New("new password must differ from the current one")
	ErrForbidden       = errors.New("forbidden")

	// ErrDependency is what callers see when the store or the mail transport
	// fails; the underlying cause is logged, never returned.
	ErrDependency = errors.New("service temporarily unavailable")
)

// IsServiceError reports whether err belongs to the caller-facing taxonomy.
func IsServiceError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidInput, ErrNotFound, ErrEmailTaken, ErrUsernameTaken,
		ErrInvalidCredentials, ErrInvalidOTP, ErrInvalidToken, ErrInvalidSession,
		ErrInactiveAccount, ErrRateLimited, ErrSamePassword, ErrForbidden, ErrDependency,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// failInternal passes taxonomy errors through untouched and downgrades
// anything else to ErrDependency after logging the cause.
func failInternal(log *logrus.Logger, err error, op string) error {
	if err == nil {
		return nil
	}
	if IsServiceError(err) {
		return err
	}
	log.WithError(err).WithField("op", op).Error("dependency failure")
	return ErrDependency
}
