package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"
	"esk/training-app/internal/storage"
)

// memStore backs all fake repositories. Transactions are serialized and roll
// back by restoring a snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users     map[string]domain.User
	invites   map[string]domain.Invite
	sessions  map[string]domain.Session
	trainings map[string]domain.Training
	exercises map[string]domain.Exercise
	uploads   []domain.Upload

	sessionErr error // returned by session lookups when set
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]domain.User{},
		invites:   map[string]domain.Invite{},
		sessions:  map[string]domain.Session{},
		trainings: map[string]domain.Training{},
		exercises: map[string]domain.Exercise{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memTx struct{ s *memStore }

func (t memTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	users := copyMap(t.s.users)
	invites := copyMap(t.s.invites)
	sessions := copyMap(t.s.sessions)
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.users, t.s.invites, t.s.sessions = users, invites, sessions
		t.s.mu.Unlock()
		return err
	}
	return nil
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.ID == u.ID {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r memUsers) List(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memUsers) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r memUsers) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- invites ---

type memInvites struct{ s *memStore }

func (r memInvites) Create(ctx context.Context, inv *domain.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invites {
		if existing.Code == inv.Code || existing.ID == inv.ID {
			return repository.ErrDuplicate
		}
	}
	inv.CreatedAt = time.Now()
	r.s.invites[inv.ID] = *inv
	return nil
}

func (r memInvites) GetUnusedByCode(ctx context.Context, code string) (*domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invites {
		if inv.Code == code && inv.UsedBy == nil {
			inv := inv
			return &inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memInvites) CountUnused(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, inv := range r.s.invites {
		if inv.UsedBy == nil {
			n++
		}
	}
	return n, nil
}

func (r memInvites) List(ctx context.Context) ([]domain.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Invite{}
	for _, inv := range r.s.invites {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memInvites) MarkUsed(ctx context.Context, id, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invites[id]
	if !ok || inv.UsedBy != nil {
		return repository.ErrNotFound
	}
	inv.UsedBy = &userID
	inv.UsedAt = &at
	r.s.invites[id] = inv
	return nil
}

func (r memInvites) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.invites, id)
	return nil
}

// --- sessions ---

type memSessions struct{ s *memStore }

func (r memSessions) Create(ctx context.Context, sess *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess.CreatedAt = time.Now()
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r memSessions) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionErr != nil {
		return nil, r.s.sessionErr
	}
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r memSessions) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r memSessions) DeleteByUserID(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

func (r memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.sessions {
		if sess.Expired(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- trainings ---

type memTrainings struct{ s *memStore }

func (r memTrainings) Create(ctx context.Context, t *domain.Training) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.s.trainings[t.ID] = *t
	return nil
}

func (r memTrainings) GetByID(ctx context.Context, id string) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trainings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r memTrainings) List(ctx context.Context) ([]domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Training{}
	for _, t := range r.s.trainings {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r memTrainings) Update(ctx context.Context, t *domain.Training) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trainings[t.ID]; !ok {
		return repository.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	r.s.trainings[t.ID] = *t
	return nil
}

func (r memTrainings) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.trainings, id)
	return nil
}

// --- exercises ---

type memExercises struct{ s *memStore }

func (r memExercises) Create(ctx context.Context, e *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.exercises[e.ID] = *e
	return nil
}

func (r memExercises) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r memExercises) List(ctx context.Context) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memExercises) Update(ctx context.Context, e *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.exercises[e.ID]; !ok {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	r.s.exercises[e.ID] = *e
	return nil
}

func (r memExercises) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.exercises, id)
	return nil
}

// --- uploads ---

type memUploads struct{ s *memStore }

func (r memUploads) Create(ctx context.Context, u *domain.Upload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.uploads = append(r.s.uploads, *u)
	return nil
}

// memStorage is an in-memory FileStorage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStorage) Get(ctx context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: m.types[key],
		Size:        int64(len(data)),
	}, nil
}
