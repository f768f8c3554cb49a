package postgres

import (
	"context"
	"time"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

type gormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates an invite repository backed by gorm.
func NewInviteRepository(db *gorm.DB) repository.InviteRepository {
	return &gormInviteRepository{db: db}
}

func (r *gormInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	return translate(conn(ctx, r.db).Create(invite).Error)
}

func (r *gormInviteRepository) GetUnusedByCode(ctx context.Context, code string) (*domain.Invite, error) {
	var invite domain.Invite
	err := conn(ctx, r.db).Where("code = ? AND used_by IS NULL", code).First(&invite).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *gormInviteRepository) CountUnused(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Invite{}).Where("used_by IS NULL").Count(&n).Error
	return n, err
}

func (r *gormInviteRepository) List(ctx context.Context) ([]domain.Invite, error) {
	invites := []domain.Invite{}
	if err := conn(ctx, r.db).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// MarkUsed only touches rows that are still unused, so two redemptions racing
// for the same invite cannot both succeed.
func (r *gormInviteRepository) MarkUsed(ctx context.Context, id, userID string, at time.Time) error {
	result := conn(ctx, r.db).Model(&domain.Invite{}).
		Where("id = ? AND used_by IS NULL", id).
		Updates(map[string]interface{}{
			"used_by": userID,
			"used_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormInviteRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Delete(&domain.Invite{}, "id = ?", id).Error
}
