package service

import (
	"context"
	"errors"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"github.com/google/uuid"
)

// ExerciseService manages the shared exercise library.
type ExerciseService interface {
	List(ctx context.Context) ([]domain.Exercise, error)
	Get(ctx context.Context, id string) (*domain.Exercise, error)
	Create(ctx context.Context, fields domain.ExercisePatch) (*domain.Exercise, error)
	Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error)
	Delete(ctx context.Context, id string) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func (s *exerciseService) List(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, internal("list exercises", err)
	}
	return exercises, nil
}

func (s *exerciseService) Get(ctx context.Context, id string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, internal("get exercise", err)
	}
	return exercise, nil
}

// Create stores a new exercise. Values are recorded as given; the id and
// timestamps are always assigned here.
func (s *exerciseService) Create(ctx context.Context, fields domain.ExercisePatch) (*domain.Exercise, error) {
	exercise := &domain.Exercise{ID: uuid.NewString()}
	fields.Apply(exercise)

	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, internal("create exercise", err)
	}
	return exercise, nil
}

// Update applies patch to the stored exercise and returns the result.
func (s *exerciseService) Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(exercise)

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, internal("update exercise", err)
	}
	return exercise, nil
}

// Delete is idempotent. Trainings that reference the exercise are left alone.
func (s *exerciseService) Delete(ctx context.Context, id string) error {
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		return internal("delete exercise", err)
	}
	return nil
}
