package service

import (
	"context"
	"strings"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"
	"dacsanviet/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProfileService owns the verification-gated mutations of a logged-in user's
// own account. Every flow follows the same shape: prove the precondition,
// issue or verify a challenge, then commit the mutation and its bookkeeping
// in one transaction.
type ProfileService struct {
	users repository.UserRepository
	uow   repository.UnitOfWork

	challenge    ChallengeTransport
	passwordHash PasswordHasher
	clock        Clock
	log          *logrus.Logger
}

func NewProfileService(
	users repository.UserRepository,
	uow repository.UnitOfWork,
	challenge ChallengeTransport,
	passwordHash PasswordHasher,
	clock Clock,
	log *logrus.Logger,
) *ProfileService {
	return &ProfileService{
		users:        users,
		uow:          uow,
		challenge:    challenge,
		passwordHash: passwordHash,
		clock:        clock,
		log:          log,
	}
}

type UpdateProfileInput struct {
	FullName    *string
	PhoneNumber *string
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.activeUser(ctx, userID)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error) {
	if input.FullName == nil && input.PhoneNumber == nil {
		return nil, ErrInvalidInput
	}
	if input.FullName != nil && strings.TrimSpace(*input.FullName) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateFields(ctx, userID, repository.UserUpdate{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return nil, s.internal(err, "update profile")
	}
	return updated, nil
}

func (s *ProfileService) SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*entity.User, error) {
	if strings.TrimSpace(avatarURL) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateFields(ctx, userID, repository.UserUpdate{AvatarURL: &avatarURL})
	if err != nil {
		return nil, s.internal(err, "update avatar")
	}
	return updated, nil
}

// ChangePassword is the direct variant: the current password is the only
// gate. All sessions are revoked on success.
func (s *ProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if strings.TrimSpace(currentPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordHash.Verify(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if s.passwordHash.Verify(user.PasswordHash, newPassword) {
		return ErrSamePassword
	}
	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return s.internal(err, "hash password")
	}
	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if _, err := r.Users.UpdateFields(ctx, userID, repository.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		_, err := r.Sessions.RevokeAllForUser(ctx, userID)
		return err
	})
	return s.internal(err, "change password")
}

// SendPasswordChangeOTP starts the challenge-gated variant. The caller must
// prove the current password before any code is issued.
func (s *ProfileService) SendPasswordChangeOTP(ctx context.Context, userID uuid.UUID, currentPassword string) (*IssueResult, error) {
	if strings.TrimSpace(currentPassword) == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.passwordHash.Verify(user.PasswordHash, currentPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.challenge.Issue(ctx, Challenge{
		Email:   user.Email,
		Purpose: entity.PurposePasswordChange,
		UserID:  user.ID.String(),
	}, user.FullName)
}

// VerifyPasswordChangeOTP applies the new password. Credential re-check,
// code match, identity binding, and new-differs-from-old must all hold;
// consumption, credential update, and session revocation commit together.
func (s *ProfileService) VerifyPasswordChangeOTP(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, code, handle string) error {
	if strings.TrimSpace(currentPassword) == "" || strings.TrimSpace(newPassword) == "" || strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordHash.Verify(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if s.passwordHash.Verify(user.PasswordHash, newPassword) {
		return ErrSamePassword
	}

	verified, err := s.challenge.Verify(ctx, Challenge{
		Email:   user.Email,
		Purpose: entity.PurposePasswordChange,
		UserID:  user.ID.String(),
	}, code, handle)
	if err != nil {
		return err
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return s.internal(err, "hash password")
	}
	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if err := verified.Consume(ctx, r, s.clock.Now()); err != nil {
			return err
		}
		if _, err := r.Users.UpdateFields(ctx, userID, repository.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		_, err := r.Sessions.RevokeAllForUser(ctx, userID)
		return err
	})
	return s.internal(err, "apply password change")
}

// SendEmailUpdateOTP sends the code to the address being claimed, so the
// challenge proves control of the new mailbox.
func (s *ProfileService) SendEmailUpdateOTP(ctx context.Context, userID uuid.UUID, newEmail string) (*IssueResult, error) {
	newEmail = utils.NormalizeEmail(newEmail)
	if newEmail == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if newEmail == user.Email {
		return nil, ErrInvalidInput
	}
	taken, err := s.users.EmailExists(ctx, newEmail)
	if err != nil {
		return nil, s.internal(err, "check email")
	}
	if taken {
		return nil, ErrEmailTaken
	}
	return s.challenge.Issue(ctx, Challenge{
		Email:   newEmail,
		Purpose: entity.PurposeEmailUpdate,
		UserID:  user.ID.String(),
		Payload: map[string]string{"new_email": newEmail},
	}, user.FullName)
}

func (s *ProfileService) VerifyEmailUpdate(ctx context.Context, userID uuid.UUID, newEmail, code, handle string) (*entity.User, error) {
	newEmail = utils.NormalizeEmail(newEmail)
	if newEmail == "" || strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verified, err := s.challenge.Verify(ctx, Challenge{
		Email:   newEmail,
		Purpose: entity.PurposeEmailUpdate,
		UserID:  user.ID.String(),
	}, code, handle)
	if err != nil {
		return nil, err
	}
	if bound := verified.Payload["new_email"]; bound != "" && bound != newEmail {
		return nil, ErrInvalidOTP
	}

	var updated *entity.User
	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if taken, err := r.Users.EmailExists(ctx, newEmail); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}
		if err := verified.Consume(ctx, r, s.clock.Now()); err != nil {
			return err
		}
		updated, err = r.Users.UpdateFields(ctx, userID, repository.UserUpdate{Email: &newEmail})
		return err
	})
	if err != nil {
		return nil, s.internal(err, "apply email update")
	}
	return updated, nil
}

// SendPhoneUpdateOTP delivers the code to the account's current email; the
// new number travels in the challenge payload.
func (s *ProfileService) SendPhoneUpdateOTP(ctx context.Context, userID uuid.UUID, newPhone string) (*IssueResult, error) {
	newPhone = strings.TrimSpace(newPhone)
	if newPhone == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.challenge.Issue(ctx, Challenge{
		Email:   user.Email,
		Purpose: entity.PurposePhoneUpdate,
		UserID:  user.ID.String(),
		Payload: map[string]string{"new_phone": newPhone},
	}, user.FullName)
}

func (s *ProfileService) VerifyPhoneUpdate(ctx context.Context, userID uuid.UUID, newPhone, code, handle string) (*entity.User, error) {
	newPhone = strings.TrimSpace(newPhone)
	if newPhone == "" || strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verified, err := s.challenge.Verify(ctx, Challenge{
		Email:   user.Email,
		Purpose: entity.PurposePhoneUpdate,
		UserID:  user.ID.String(),
	}, code, handle)
	if err != nil {
		return nil, err
	}
	if bound := verified.Payload["new_phone"]; bound != "" && bound != newPhone {
		return nil, ErrInvalidOTP
	}

	var updated *entity.User
	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if err := verified.Consume(ctx, r, s.clock.Now()); err != nil {
			return err
		}
		updated, err = r.Users.UpdateFields(ctx, userID, repository.UserUpdate{PhoneNumber: &newPhone})
		return err
	})
	if err != nil {
		return nil, s.internal(err, "apply phone update")
	}
	return updated, nil
}

func (s *ProfileService) activeUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.internal(err, "find user")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

func (s *ProfileService) internal(err error, op string) error {
	return failInternal(s.log, err, op)
}
