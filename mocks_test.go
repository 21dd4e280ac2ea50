package todo_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/goliatone/go-repository-bun"
	todo "github.com/goliatone/go-todo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockLogger implements todo.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// noopLogger swallows everything; used where log output is not under test.
type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// testIdentity is a plain Identity value for token tests.
type testIdentity struct {
	id       string
	username string
}

func (t testIdentity) ID() string       { return t.id }
func (t testIdentity) Username() string { return t.username }

// MockIdentityProvider implements todo.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (*todo.User, error) {
	args := m.Called(ctx, identifier, password)
	if user := args.Get(0); user != nil {
		return user.(*todo.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindByUsername(ctx context.Context, username string) (*todo.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*todo.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// memRepo is an in-memory RepositoryManager used by the HTTP tests. It keeps
// the same not-found semantics as the real repositories so error translation
// in the handlers is exercised for real.
type memRepo struct {
	users *memUsers
	tasks *memTasks
}

func newMemRepo() *memRepo {
	return &memRepo{
		users: &memUsers{records: map[uuid.UUID]*todo.User{}},
		tasks: &memTasks{records: map[uuid.UUID]*todo.Task{}},
	}
}

func (m *memRepo) Validate() error { return nil }
func (m *memRepo) MustValidate()   {}

func (m *memRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *memRepo) Users() todo.Users { return m.users }
func (m *memRepo) Tasks() todo.Tasks { return m.tasks }

type memUsers struct {
	mu      sync.Mutex
	records map[uuid.UUID]*todo.User
}

func (s *memUsers) GetByUsername(ctx context.Context, username string) (*todo.User, error) {
	return s.GetByUsernameTx(ctx, nil, username)
}

func (s *memUsers) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*todo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.records {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"username": username})
}

func (s *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*todo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.records[id]; ok {
		clone := *u
		return &clone, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"id": id.String()})
}

func (s *memUsers) Create(ctx context.Context, record *todo.User) (*todo.User, error) {
	return s.CreateTx(ctx, nil, record)
}

func (s *memUsers) CreateTx(ctx context.Context, tx bun.IDB, record *todo.User) (*todo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	for _, u := range s.records {
		if u.Username == record.Username {
			return nil, todo.ErrUsernameTaken
		}
	}

	clone := *record
	s.records[record.ID] = &clone
	return record, nil
}

func (s *memUsers) List(ctx context.Context, skip, limit int) ([]*todo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*todo.User{}
	for _, u := range s.records {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return paginate(out, skip, limit), nil
}

func (s *memUsers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	delete(s.records, id)
	return nil
}

type memTasks struct {
	mu      sync.Mutex
	records map[uuid.UUID]*todo.Task
}

func (s *memTasks) GetByID(ctx context.Context, id uuid.UUID) (*todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.records[id]; ok {
		clone := *t
		return &clone, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"id": id.String()})
}

func (s *memTasks) Create(ctx context.Context, record *todo.Task) (*todo.Task, error) {
	return s.CreateTx(ctx, nil, record)
}

func (s *memTasks) CreateTx(ctx context.Context, tx bun.IDB, record *todo.Task) (*todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	clone := *record
	s.records[record.ID] = &clone
	return record, nil
}

func (s *memTasks) Update(ctx context.Context, record *todo.Task) (*todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": record.ID.String()})
	}

	clone := *record
	s.records[record.ID] = &clone
	return record, nil
}

func (s *memTasks) ListByOwner(ctx context.Context, owner uuid.UUID, skip, limit int) ([]*todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*todo.Task{}
	for _, t := range s.records {
		if t.OwnerID == owner {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })

	return paginate(out, skip, limit), nil
}

func (s *memTasks) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	delete(s.records, id)
	return nil
}

func paginate[T any](in []T, skip, limit int) []T {
	if skip >= len(in) {
		return []T{}
	}
	in = in[skip:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
