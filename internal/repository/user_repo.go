package repository

import (
	"context"
	"errors"

	"dacsanviet/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserUpdate enumerates every mutable user field. Nil means "leave alone";
// nothing here is assembled into SQL from caller-supplied keys.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	FullName     *string
	PhoneNumber  *string
	Role         *entity.UserRole
	IsActive     *bool
	AvatarURL    *string
}

type UserStats struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveUsers  int64 `json:"active_users"`
	AdminUsers   int64 `json:"admin_users"`
	StaffUsers   int64 `json:"staff_users"`
	RegularUsers int64 `json:"regular_users"`
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, update UserUpdate) (*entity.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]entity.User, error)
	Search(ctx context.Context, query string, limit int) ([]entity.User, error)
	FindByRole(ctx context.Context, role entity.UserRole, limit int) ([]entity.User, error)
	Stats(ctx context.Context) (UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = true", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_active = true", username).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// EmailExists and UsernameExists deliberately ignore is_active: identity of a
// deactivated account is not reusable by a new registrant.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, update UserUpdate) (*entity.User, error) {
	values := map[string]any{}
	if update.Email != nil {
		values["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		values["password_hash"] = *update.PasswordHash
	}
	if update.FullName != nil {
		values["full_name"] = *update.FullName
	}
	if update.PhoneNumber != nil {
		values["phone_number"] = *update.PhoneNumber
	}
	if update.Role != nil {
		values["role"] = *update.Role
	}
	if update.IsActive != nil {
		values["is_active"] = *update.IsActive
	}
	if update.AvatarURL != nil {
		values["avatar_url"] = *update.AvatarURL
	}
	if len(values) > 0 {
		err := r.db.WithContext(ctx).
			Model(&entity.User{}).
			Where("id = ?", id).
			Updates(values).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("is_active", false).
		Error
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	var users []entity.User
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]entity.User, error) {
	var users []entity.User
	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).
		Where("(full_name ILIKE ? OR email ILIKE ? OR username ILIKE ?) AND is_active = true",
			pattern, pattern, pattern).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindByRole(ctx context.Context, role entity.UserRole, limit int) ([]entity.User, error) {
	var users []entity.User
	q := r.db.WithContext(ctx).
		Where("role = ? AND is_active = true", role).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Stats(ctx context.Context) (UserStats, error) {
	var stats UserStats
	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&entity.User{}) }
	if err := model().Count(&stats.TotalUsers).Error; err != nil {
		return stats, err
	}
	if err := model().Where("is_active = true").Count(&stats.ActiveUsers).Error; err != nil {
		return stats, err
	}
	if err := model().Where("role = ?", entity.UserRoleAdmin).Count(&stats.AdminUsers).Error; err != nil {
		return stats, err
	}
	if err := model().Where("role = ?", entity.UserRoleStaff).Count(&stats.StaffUsers).Error; err != nil {
		return stats, err
	}
	if err := model().Where("role = ?", entity.UserRoleUser).Count(&stats.RegularUsers).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
