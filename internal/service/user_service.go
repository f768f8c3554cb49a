package service

import (
	"context"
	"errors"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"
)

// UserService is the admin-facing account management surface.
type UserService interface {
	List(ctx context.Context) ([]domain.PublicUser, error)
	SetRole(ctx context.Context, targetID string, role domain.Role, actor domain.PublicUser) (*domain.PublicUser, error)
	Delete(ctx context.Context, targetID string, actor domain.PublicUser) error
}

type userService struct {
	tx       repository.Transactor
	userRepo repository.UserRepository
	sessRepo repository.SessionRepository
}

func NewUserService(tx repository.Transactor, userRepo repository.UserRepository, sessRepo repository.SessionRepository) UserService {
	return &userService{tx: tx, userRepo: userRepo, sessRepo: sessRepo}
}

func (s *userService) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, internal("list users", err)
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// SetRole changes targetID's role. An admin may not demote themselves, which
// keeps at least the acting admin in place.
func (s *userService) SetRole(ctx context.Context, targetID string, role domain.Role, actor domain.PublicUser) (*domain.PublicUser, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if targetID == actor.ID && role != domain.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("update role", err)
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("reload user", err)
	}
	public := user.Public()
	return &public, nil
}

// Delete removes the account and every session it holds.
func (s *userService) Delete(ctx context.Context, targetID string, actor domain.PublicUser) error {
	if targetID == actor.ID {
		return ErrSelfDeletion
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessRepo.DeleteByUserID(ctx, targetID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, targetID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return internal("delete user", err)
	}
	return nil
}
