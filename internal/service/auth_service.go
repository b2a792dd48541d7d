package service

import (
	"context"
	"strings"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"
	"dacsanviet/internal/utils"

	"github.com/sirupsen/logrus"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthService sequences the credential store, the challenge transport, the
// token manager, and the session registry into the registration, login, and
// password-reset flows. Any precondition failure is a pure rejection; the
// mutating tail of each verify flow runs in one transaction.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	uow      repository.UnitOfWork

	challenge    ChallengeTransport
	email        EmailSender
	passwordHash PasswordHasher
	tokens       utils.TokenManager
	clock        Clock
	config       AuthConfig
	log          *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	uow repository.UnitOfWork,
	challenge ChallengeTransport,
	email EmailSender,
	passwordHash PasswordHasher,
	tokens utils.TokenManager,
	clock Clock,
	config AuthConfig,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		uow:          uow,
		challenge:    challenge,
		email:        email,
		passwordHash: passwordHash,
		tokens:       tokens,
		clock:        clock,
		config:       config,
		log:          log,
	}
}

// Register creates an account directly, without an email challenge.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	username := utils.NormalizeUsername(input.Username)
	email := utils.NormalizeEmail(input.Email)
	if username == "" || email == "" || strings.TrimSpace(input.Password) == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, ErrInvalidInput
	}

	if err := s.checkIdentityFree(ctx, s.users, email, username); err != nil {
		return nil, s.internal(err, "check identity")
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, s.internal(err, "hash password")
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		PhoneNumber:  input.PhoneNumber,
		Role:         entity.UserRoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.internal(err, "create user")
	}
	return user, nil
}

func (s *AuthService) SendRegistrationOTP(ctx context.Context, email string, fullName string) (*IssueResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, s.internal(err, "check email")
	}
	if taken {
		return nil, ErrEmailTaken
	}
	return s.challenge.Issue(ctx, Challenge{Email: email, Purpose: entity.PurposeRegistration}, fullName)
}

// VerifyRegistrationOTP completes the challenge-gated registration: the code
// must still be valid, the identity still free, and user creation plus code
// consumption commit together.
func (s *AuthService) VerifyRegistrationOTP(ctx context.Context, input VerifyRegistrationInput) (*AuthResult, error) {
	username := utils.NormalizeUsername(input.Username)
	email := utils.NormalizeEmail(input.Email)
	if username == "" || email == "" || strings.TrimSpace(input.Password) == "" ||
		strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Code) == "" {
		return nil, ErrInvalidInput
	}

	verified, err := s.challenge.Verify(ctx, Challenge{Email: email, Purpose: entity.PurposeRegistration}, input.Code, input.Handle)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, s.internal(err, "hash password")
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		PhoneNumber:  input.PhoneNumber,
		Role:         entity.UserRoleUser,
		IsActive:     true,
	}
	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if err := s.checkIdentityFree(ctx, r.Users, email, username); err != nil {
			return err
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return verified.Consume(ctx, r, s.clock.Now())
	})
	if err != nil {
		return nil, s.internal(err, "complete registration")
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, s.internal(err, "issue tokens")
	}

	// Welcome mail is best effort; the account already exists.
	if err := s.email.SendWelcome(ctx, user.Email, user.FullName, user.Username); err != nil {
		s.log.WithError(err).Warn("welcome email send failed")
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(input.EmailOrUsername)
	if identifier == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}

	var user *entity.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, utils.NormalizeEmail(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, s.internal(err, "find user")
	}
	if user == nil {
		// Burn a comparison so unknown identities cost the same as wrong
		// passwords.
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, s.internal(err, "issue tokens")
	}

	return &AuthResult{User: user, Tokens: tokens, Session: session}, nil
}

// Logout revokes a single session. Unknown session handles are ignored so
// logout is always safe to repeat.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if _, err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return s.internal(err, "revoke session")
	}
	return nil
}

func (s *AuthService) CheckSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.FindBySessionID(ctx, sessionID, s.clock.Now())
	if err != nil {
		return nil, s.internal(err, "find session")
	}
	if session == nil {
		return nil, ErrInvalidSession
	}
	if !session.User.IsActive {
		return nil, ErrInactiveAccount
	}
	return session, nil
}

// LogoutAll revokes every session of the caller, identified by one of their
// still-valid sessions.
func (s *AuthService) LogoutAll(ctx context.Context, sessionID string) (int64, error) {
	session, err := s.CheckSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	count, err := s.sessions.RevokeAllForUser(ctx, session.UserID)
	if err != nil {
		return 0, s.internal(err, "revoke sessions")
	}
	return count, nil
}

func (s *AuthService) SendPasswordResetOTP(ctx context.Context, email string) (*IssueResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.internal(err, "find user")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.challenge.Issue(ctx, Challenge{
		Email:   email,
		Purpose: entity.PurposePasswordReset,
		UserID:  user.ID.String(),
	}, user.FullName)
}

// ResetPasswordWithOTP applies a new password once the emailed code checks
// out, then forces re-authentication everywhere.
func (s *AuthService) ResetPasswordWithOTP(ctx context.Context, input PasswordResetInput) error {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.Code) == "" || strings.TrimSpace(input.NewPassword) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return s.internal(err, "find user")
	}
	if user == nil {
		return ErrNotFound
	}

	verified, err := s.challenge.Verify(ctx, Challenge{
		Email:   email,
		Purpose: entity.PurposePasswordReset,
		UserID:  user.ID.String(),
	}, input.Code, input.Handle)
	if err != nil {
		return err
	}

	hash, err := s.passwordHash.Hash(input.NewPassword)
	if err != nil {
		return s.internal(err, "hash password")
	}

	err = s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if err := verified.Consume(ctx, r, s.clock.Now()); err != nil {
			return err
		}
		if _, err := r.Users.UpdateFields(ctx, user.ID, repository.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		_, err := r.Sessions.RevokeAllForUser(ctx, user.ID)
		return err
	})
	return s.internal(err, "reset password")
}

func (s *AuthService) openSession(ctx context.Context, user *entity.User, ip, userAgent *string) (*SessionInfo, error) {
	sessionID, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, s.internal(err, "generate session id")
	}
	expiresAt := s.clock.Now().Add(s.config.sessionTTL())
	session := &entity.Session{
		UserID:    user.ID,
		SessionID: sessionID,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.internal(err, "create session")
	}
	return &SessionInfo{SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) issueTokenPair(user *entity.User) (TokenPair, error) {
	access, accessTTL, err := s.tokens.IssueAccessToken(
		user.ID.String(), user.Email, user.Username, string(user.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshTTL, err := s.tokens.IssueRefreshToken(
		user.ID.String(), user.Email, user.Username, string(user.Role))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresIn:  int64(accessTTL.Seconds()),
		RefreshToken:     refresh,
		RefreshExpiresIn: int64(refreshTTL.Seconds()),
	}, nil
}

func (s *AuthService) checkIdentityFree(ctx context.Context, users repository.UserRepository, email, username string) error {
	if taken, err := users.EmailExists(ctx, email); err != nil {
		return err
	} else if taken {
		return ErrEmailTaken
	}
	if taken, err := users.UsernameExists(ctx, username); err != nil {
		return err
	} else if taken {
		return ErrUsernameTaken
	}
	return nil
}

func (s *AuthService) internal(err error, op string) error {
	return failInternal(s.log, err, op)
}
