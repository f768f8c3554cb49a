package service

import (
	"context"
	"errors"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"github.com/google/uuid"
)

// TrainingService manages the team calendar.
type TrainingService interface {
	List(ctx context.Context) ([]domain.Training, error)
	Get(ctx context.Context, id string) (*domain.Training, error)
	Create(ctx context.Context, fields domain.TrainingPatch) (*domain.Training, error)
	Update(ctx context.Context, id string, patch domain.TrainingPatch) (*domain.Training, error)
	Delete(ctx context.Context, id string) error
}

type trainingService struct {
	trainingRepo repository.TrainingRepository
}

func NewTrainingService(trainingRepo repository.TrainingRepository) TrainingService {
	return &trainingService{trainingRepo: trainingRepo}
}

// List returns every training, earliest date first.
func (s *trainingService) List(ctx context.Context) ([]domain.Training, error) {
	trainings, err := s.trainingRepo.List(ctx)
	if err != nil {
		return nil, internal("list trainings", err)
	}
	return trainings, nil
}

func (s *trainingService) Get(ctx context.Context, id string) (*domain.Training, error) {
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, internal("get training", err)
	}
	return training, nil
}

func (s *trainingService) Create(ctx context.Context, fields domain.TrainingPatch) (*domain.Training, error) {
	training := &domain.Training{ID: uuid.NewString()}
	fields.Apply(training)

	if err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, internal("create training", err)
	}
	return training, nil
}

func (s *trainingService) Update(ctx context.Context, id string, patch domain.TrainingPatch) (*domain.Training, error) {
	training, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(training)

	if err := s.trainingRepo.Update(ctx, training); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, internal("update training", err)
	}
	return training, nil
}

// Delete is idempotent: removing a training that is already gone succeeds.
func (s *trainingService) Delete(ctx context.Context, id string) error {
	if err := s.trainingRepo.Delete(ctx, id); err != nil {
		return internal("delete training", err)
	}
	return nil
}
