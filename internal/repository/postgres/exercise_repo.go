package postgres

import (
	"context"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

// gormExerciseRepository implements repository.ExerciseRepository
type gormExerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository creates a new Exercise repository backed by gorm.
func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &gormExerciseRepository{db: db}
}

// Create inserts a new exercise into the database.
func (r *gormExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	return translate(conn(ctx, r.db).Create(exercise).Error)
}

// GetByID retrieves an exercise by its ID.
func (r *gormExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := conn(ctx, r.db).First(&exercise, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &exercise, nil
}

// List retrieves the whole exercise library sorted by name.
func (r *gormExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	if err := conn(ctx, r.db).Order("name ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing exercise in the database.
func (r *gormExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	result := conn(ctx, r.db).Model(exercise).
		Select("name", "description", "images", "video", "youtube_url", "updated_at").
		Updates(exercise)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise. Trainings referencing it keep the dangling id.
func (r *gormExerciseRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Delete(&domain.Exercise{}, "id = ?", id).Error
}
