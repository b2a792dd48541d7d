package repository

import (
	"context"
	"errors"
	"time"

	"dacsanviet/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStats struct {
	TotalSessions   int64 `json:"total_sessions"`
	ActiveSessions  int64 `json:"active_sessions"`
	ExpiredSessions int64 `json:"expired_sessions"`
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*entity.Session, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error)
	FindAll(ctx context.Context, limit, offset int) ([]entity.Session, error)
	FindByIP(ctx context.Context, ip string, limit int) ([]entity.Session, error)
	Revoke(ctx context.Context, sessionID string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	Stats(ctx context.Context, now time.Time) (SessionStats, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepository) FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ? AND is_active = true AND expires_at > ?", sessionID, now).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *sessionRepository) FindByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = true AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) FindAll(ctx context.Context, limit, offset int) ([]entity.Session, error) {
	var sessions []entity.Session
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindByIP returns every session opened from the address, revoked and expired
// ones included, so an investigation sees the full history.
func (r *sessionRepository) FindByIP(ctx context.Context, ip string, limit int) ([]entity.Session, error) {
	var sessions []entity.Session
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("ip_address = ?", ip).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, sessionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("session_id = ?", sessionID).
		Update("is_active", false)
	return result.RowsAffected > 0, result.Error
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("user_id = ? AND is_active = true", userID).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR is_active = false", now).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) Stats(ctx context.Context, now time.Time) (SessionStats, error) {
	var stats SessionStats
	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&entity.Session{}) }
	if err := model().Count(&stats.TotalSessions).Error; err != nil {
		return stats, err
	}
	if err := model().Where("is_active = true AND expires_at > ?", now).Count(&stats.ActiveSessions).Error; err != nil {
		return stats, err
	}
	if err := model().Where("expires_at <= ?", now).Count(&stats.ExpiredSessions).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
