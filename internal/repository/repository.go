package repository

import (
	"context"
	"time"

	"esk/training-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn inside a single database transaction. Repositories called
// with the ctx handed to fn take part in that transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // case-insensitive
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

// InviteRepository defines the interface for interacting with invite codes.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetUnusedByCode(ctx context.Context, code string) (*domain.Invite, error)
	CountUnused(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]domain.Invite, error)
	// MarkUsed consumes the invite. It returns ErrNotFound when the invite is
	// missing or was consumed in the meantime.
	MarkUsed(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository stores server-side login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TrainingRepository defines the interface for interacting with training data.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) error
	GetByID(ctx context.Context, id string) (*domain.Training, error)
	List(ctx context.Context) ([]domain.Training, error)
	Update(ctx context.Context, training *domain.Training) error
	Delete(ctx context.Context, id string) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id string) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) error
}
