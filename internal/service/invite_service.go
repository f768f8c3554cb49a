package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"github.com/google/uuid"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 8
	inviteCodeAttempts = 5
)

type InviteService interface {
	List(ctx context.Context) ([]domain.Invite, error)
	Create(ctx context.Context, actor domain.PublicUser) (*domain.Invite, error)
	Delete(ctx context.Context, id string) error
}

type inviteService struct {
	inviteRepo repository.InviteRepository
}

func NewInviteService(inviteRepo repository.InviteRepository) InviteService {
	return &inviteService{inviteRepo: inviteRepo}
}

// List returns all invites, newest first.
func (s *inviteService) List(ctx context.Context) ([]domain.Invite, error) {
	invites, err := s.inviteRepo.List(ctx)
	if err != nil {
		return nil, internal("list invites", err)
	}
	return invites, nil
}

// Create issues a fresh invite code on behalf of actor. Codes are random, so a
// collision with an existing code is retried a few times before giving up.
func (s *inviteService) Create(ctx context.Context, actor domain.PublicUser) (*domain.Invite, error) {
	var lastErr error
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, internal("generate invite code", err)
		}
		invite := &domain.Invite{
			ID:        uuid.NewString(),
			Code:      code,
			CreatedBy: actor.ID,
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, internal("create invite", err)
		}
		lastErr = err
	}
	return nil, internal("create invite", lastErr)
}

// Delete removes an invite, used or not. Missing ids are not an error.
func (s *inviteService) Delete(ctx context.Context, id string) error {
	if err := s.inviteRepo.Delete(ctx, id); err != nil {
		return internal("delete invite", err)
	}
	return nil
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
