package postgres

import (
	"context"
	"time"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

type gormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a session store backed by the sessions table.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return translate(conn(ctx, r.db).Create(session).Error)
}

func (r *gormSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := conn(ctx, r.db).First(&session, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// Delete is idempotent.
func (r *gormSessionRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Delete(&domain.Session{}, "id = ?", id).Error
}

func (r *gormSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return conn(ctx, r.db).Delete(&domain.Session{}, "user_id = ?", userID).Error
}

func (r *gormSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, r.db).Delete(&domain.Session{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}
