package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errNoSession = newError(ErrUnauthenticated, "not logged in")

// RegisterInput is what a visitor submits to redeem an invite.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	InviteCode string
}

// AuthService covers credentials, invite redemption and login sessions.
type AuthService interface {
	// EnsureBootstrapInvite creates the well-known first invite on an empty
	// system. It reports whether an invite was created.
	EnsureBootstrapInvite(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) (*domain.Session, *domain.PublicUser, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Session, *domain.PublicUser, error)
	Logout(ctx context.Context, sessionID string) error
	// Authorize resolves sessionID to an identity and runs policies against it.
	Authorize(ctx context.Context, sessionID string, policies ...Policy) Decision
	// PurgeExpiredSessions drops sessions past their expiry and returns how many.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// AuthOptions tunes hashing and session lifetime.
type AuthOptions struct {
	BcryptCost int
	SessionTTL time.Duration
}

// authService implements the AuthService interface.
type authService struct {
	tx         repository.Transactor
	userRepo   repository.UserRepository
	inviteRepo repository.InviteRepository
	sessRepo   repository.SessionRepository
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
	sessRepo repository.SessionRepository,
	opts AuthOptions,
	logger *slog.Logger,
) AuthService {
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		tx:         tx,
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		sessRepo:   sessRepo,
		bcryptCost: opts.BcryptCost,
		sessionTTL: opts.SessionTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// EnsureBootstrapInvite runs once at startup, before the server accepts
// requests, so it does not need a transaction.
func (s *authService) EnsureBootstrapInvite(ctx context.Context) (bool, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, internal("count users", err)
	}
	unused, err := s.inviteRepo.CountUnused(ctx)
	if err != nil {
		return false, internal("count unused invites", err)
	}
	if users > 0 || unused > 0 {
		return false, nil
	}

	invite := &domain.Invite{
		ID:        domain.BootstrapInviteID,
		Code:      domain.BootstrapInviteCode,
		CreatedBy: domain.SystemCreator,
	}
	err = s.inviteRepo.Create(ctx, invite)
	if errors.Is(err, repository.ErrDuplicate) {
		// The well-known invite was consumed by an account that no longer
		// exists. Issue a random one so the system is not locked out.
		code, cerr := generateInviteCode()
		if cerr != nil {
			return false, internal("generate invite code", cerr)
		}
		invite = &domain.Invite{ID: uuid.NewString(), Code: code, CreatedBy: domain.SystemCreator}
		err = s.inviteRepo.Create(ctx, invite)
	}
	if err != nil {
		return false, internal("create bootstrap invite", err)
	}

	s.logger.Info("bootstrap invite created", "code", invite.Code)
	return true, nil
}

// Login checks credentials and opens a new session.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, internal("login lookup", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	public := user.Public()
	return sess, &public, nil
}

// Register redeems an invite, creates the account and logs it in. The first
// account on the system becomes an administrator.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.Session, *domain.PublicUser, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	code := strings.TrimSpace(in.InviteCode)
	if name == "" || email == "" || in.Password == "" || code == "" {
		return nil, nil, ErrMissingFields
	}

	invite, err := s.inviteRepo.GetUnusedByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidInvite
		}
		return nil, nil, internal("register invite lookup", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, internal("register email lookup", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, nil, ErrPasswordTooLong
		}
		return nil, nil, ErrHashingFailed
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			user.Role = domain.RoleAdmin
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		if err := s.inviteRepo.MarkUsed(ctx, invite.ID, user.ID, s.now()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidInvite
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrInvalidInvite) {
			return nil, nil, err
		}
		return nil, nil, internal("register", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role, "invite_id", invite.ID)

	sess, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	public := user.Public()
	return sess, &public, nil
}

// Logout removes the session. Unknown ids are not an error.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessRepo.Delete(ctx, sessionID); err != nil {
		return internal("logout", err)
	}
	return nil
}

func (s *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internal("purge sessions", err)
	}
	return n, nil
}

func (s *authService) Authorize(ctx context.Context, sessionID string, policies ...Policy) Decision {
	identity, err := s.identify(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return Deny(DenyUnauthenticated)
		}
		return Fail(err)
	}
	return Evaluate(*identity, policies...)
}

// identify resolves a session id to the user it belongs to. Expired sessions
// and sessions of deleted users are removed on sight.
func (s *authService) identify(ctx context.Context, sessionID string) (*domain.PublicUser, error) {
	if sessionID == "" {
		return nil, errNoSession
	}

	sess, err := s.sessRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNoSession
		}
		return nil, internal("session lookup", err)
	}

	if sess.Expired(s.now()) {
		if err := s.sessRepo.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, errNoSession
	}

	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if err := s.sessRepo.Delete(ctx, sess.ID); err != nil {
				s.logger.Warn("failed to delete orphaned session", "error", err)
			}
			return nil, errNoSession
		}
		return nil, internal("session user lookup", err)
	}

	public := user.Public()
	return &public, nil
}

func (s *authService) openSession(ctx context.Context, userID string) (*domain.Session, error) {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessRepo.Create(ctx, sess); err != nil {
		return nil, internal("create session", err)
	}
	return sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
