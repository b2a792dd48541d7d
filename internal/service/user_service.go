package service

import (
	"context"
	"strings"

	"dacsanviet/internal/entity"
	"dacsanviet/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserService is the admin-facing management surface over the credential
// store and the session registry.
type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	uow      repository.UnitOfWork
	clock    Clock
	log      *logrus.Logger
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	uow repository.UnitOfWork,
	clock Clock,
	log *logrus.Logger,
) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		uow:      uow,
		clock:    clock,
		log:      log,
	}
}

type AdminUserUpdateInput struct {
	FullName    *string
	PhoneNumber *string
	Role        *entity.UserRole
	IsActive    *bool
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, s.internal(err, "list users")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, s.internal(err, "find user")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Update applies the admin-mutable fields. Deactivating through here
// cascades session revocation, same as SoftDelete.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input AdminUserUpdateInput) (*entity.User, error) {
	if input.FullName == nil && input.PhoneNumber == nil && input.Role == nil && input.IsActive == nil {
		return nil, ErrInvalidInput
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var updated *entity.User
	err := s.uow.Do(ctx, func(r repository.RepositorySet) error {
		var err error
		updated, err = r.Users.UpdateFields(ctx, id, repository.UserUpdate{
			FullName:    input.FullName,
			PhoneNumber: input.PhoneNumber,
			Role:        input.Role,
			IsActive:    input.IsActive,
		})
		if err != nil {
			return err
		}
		if input.IsActive != nil && !*input.IsActive {
			_, err = r.Sessions.RevokeAllForUser(ctx, id)
		}
		return err
	})
	if err != nil {
		return nil, s.internal(err, "update user")
	}
	return updated, nil
}

// SoftDelete deactivates the account and revokes every session in one
// transaction. Rows are never hard-deleted.
func (s *UserService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(r repository.RepositorySet) error {
		if err := r.Users.Deactivate(ctx, id); err != nil {
			return err
		}
		_, err := r.Sessions.RevokeAllForUser(ctx, id)
		return err
	})
	return s.internal(err, "deactivate user")
}

func (s *UserService) ToggleStatus(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := !user.IsActive
	return s.Update(ctx, id, AdminUserUpdateInput{IsActive: &next})
}

func (s *UserService) Search(ctx context.Context, query string, limit int) ([]entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	users, err := s.users.Search(ctx, query, limit)
	if err != nil {
		return nil, s.internal(err, "search users")
	}
	return users, nil
}

func (s *UserService) FindByRole(ctx context.Context, role entity.UserRole, limit int) ([]entity.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidInput
	}
	users, err := s.users.FindByRole(ctx, role, limit)
	if err != nil {
		return nil, s.internal(err, "find users by role")
	}
	return users, nil
}

func (s *UserService) Stats(ctx context.Context) (repository.UserStats, error) {
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return stats, s.internal(err, "user stats")
	}
	return stats, nil
}

func (s *UserService) SessionsOfUser(ctx context.Context, id uuid.UUID) ([]entity.Session, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.FindByUserID(ctx, id, s.clock.Now())
	if err != nil {
		return nil, s.internal(err, "list sessions")
	}
	return sessions, nil
}

func (s *UserService) AllSessions(ctx context.Context, limit, offset int) ([]entity.Session, error) {
	sessions, err := s.sessions.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, s.internal(err, "list sessions")
	}
	return sessions, nil
}

func (s *UserService) SessionsByIP(ctx context.Context, ip string, limit int) ([]entity.Session, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil, ErrInvalidInput
	}
	sessions, err := s.sessions.FindByIP(ctx, ip, limit)
	if err != nil {
		return nil, s.internal(err, "list sessions by ip")
	}
	return sessions, nil
}

func (s *UserService) SessionStats(ctx context.Context) (repository.SessionStats, error) {
	stats, err := s.sessions.Stats(ctx, s.clock.Now())
	if err != nil {
		return stats, s.internal(err, "session stats")
	}
	return stats, nil
}

func (s *UserService) RevokeSession(ctx context.Context, sessionID string) error {
	found, err := s.sessions.Revoke(ctx, sessionID)
	if err != nil {
		return s.internal(err, "revoke session")
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *UserService) internal(err error, op string) error {
	return failInternal(s.log, err, op)
}
