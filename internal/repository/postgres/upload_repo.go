package postgres

import (
	"context"
	"errors"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

// gormUploadRepository implements repository.UploadRepository
type gormUploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new Upload repository backed by gorm.
func NewUploadRepository(db *gorm.DB) repository.UploadRepository {
	return &gormUploadRepository{db: db}
}

// Create inserts new upload metadata into the database.
func (r *gormUploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	if upload.ObjectKey == "" || upload.UploadedBy == "" {
		return errors.New("upload requires objectKey and uploadedBy")
	}
	return translate(conn(ctx, r.db).Create(upload).Error)
}
