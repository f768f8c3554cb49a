package postgres

import (
	"context"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

type gormTrainingRepository struct {
	db *gorm.DB
}

// NewTrainingRepository creates a training repository backed by gorm.
func NewTrainingRepository(db *gorm.DB) repository.TrainingRepository {
	return &gormTrainingRepository{db: db}
}

func (r *gormTrainingRepository) Create(ctx context.Context, training *domain.Training) error {
	return translate(conn(ctx, r.db).Create(training).Error)
}

func (r *gormTrainingRepository) GetByID(ctx context.Context, id string) (*domain.Training, error) {
	var training domain.Training
	if err := conn(ctx, r.db).First(&training, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &training, nil
}

// List returns trainings in calendar order.
func (r *gormTrainingRepository) List(ctx context.Context) ([]domain.Training, error) {
	trainings := []domain.Training{}
	if err := conn(ctx, r.db).Order("date ASC, created_at ASC").Find(&trainings).Error; err != nil {
		return nil, err
	}
	return trainings, nil
}

// Update writes every column of training back.
func (r *gormTrainingRepository) Update(ctx context.Context, training *domain.Training) error {
	result := conn(ctx, r.db).Model(training).
		Select("date", "time", "location", "description", "exercise_ids", "updated_at").
		Updates(training)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete is idempotent: removing a missing row is not an error.
func (r *gormTrainingRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Delete(&domain.Training{}, "id = ?", id).Error
}
