package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/auth"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/repositories/refreshtokens"
	"github.com/sameershelar/toodo/internal/server/repositories/todos"
	"github.com/sameershelar/toodo/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for every repository. It ignores the
// database handle, so transactions are only observed through sqlmock.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	refresh map[string]models.RefreshToken
	todos   map[string]*models.Todo

	findUserErr   error
	saveUserErr   error
	findTokenErr  error
	saveTokenErr  error
	deleteMissing bool // Delete reports nothing removed
	todoErr       error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		refresh: map[string]models.RefreshToken{},
		todos:   map[string]*models.Todo{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository                 { return (*memUsers)(m) }
func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return (*memRefresh)(m) }
func (m *memStore) Todos(dbx.DBTX) todos.Repository                 { return (*memTodos)(m) }

func refreshKey(userID, hash string) string { return userID + "|" + hash }

func (m *memStore) tokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refresh)
}

func (m *memStore) tokenRecord(userID, hash string) (models.RefreshToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.refresh[refreshKey(userID, hash)]
	return t, ok
}

type memUsers memStore

func (r *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findUserErr != nil {
		return nil, r.findUserErr
	}
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findUserErr != nil {
		return nil, r.findUserErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsers) Save(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveUserErr != nil {
		return nil, r.saveUserErr
	}
	for _, other := range r.users {
		if other.Email == u.Email && other.ID != u.ID {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
		u.CreatedAt = time.Now()
	}
	c := *u
	r.users[u.ID] = &c
	return u, nil
}

type memRefresh memStore

func (r *memRefresh) Save(_ context.Context, userID, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveTokenErr != nil {
		return r.saveTokenErr
	}
	k := refreshKey(userID, hash)
	if _, ok := r.refresh[k]; ok {
		return common.ErrorAlreadyExists
	}
	r.refresh[k] = models.RefreshToken{UserID: userID, TokenHash: hash, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (r *memRefresh) Find(_ context.Context, userID, hash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findTokenErr != nil {
		return nil, r.findTokenErr
	}
	t, ok := r.refresh[refreshKey(userID, hash)]
	if !ok || t.Expired(time.Now()) {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *memRefresh) Delete(_ context.Context, userID, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteMissing {
		return false, nil
	}
	k := refreshKey(userID, hash)
	_, ok := r.refresh[k]
	delete(r.refresh, k)
	return ok, nil
}

type memTodos memStore

func (r *memTodos) Save(_ context.Context, t *models.Todo) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.todoErr != nil {
		return nil, r.todoErr
	}
	if old, ok := r.todos[t.ID]; ok {
		if old.OwnerID != t.OwnerID {
			return nil, common.ErrorForbidden
		}
		t.CreatedAt = old.CreatedAt
	} else {
		t.CreatedAt = time.Now()
	}
	c := *t
	r.todos[t.ID] = &c
	return t, nil
}

func (r *memTodos) FindByID(_ context.Context, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.todoErr != nil {
		return nil, r.todoErr
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r *memTodos) ListByOwner(_ context.Context, ownerID string) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.todoErr != nil {
		return nil, r.todoErr
	}
	out := make([]*models.Todo, 0)
	for _, t := range r.todos {
		if t.OwnerID == ownerID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTodos) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.todos[id]
	delete(r.todos, id)
	return ok, nil
}

type countingRecorder struct {
	mu   sync.Mutex
	seen map[string]int
}

func (c *countingRecorder) RecordAuth(op, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = map[string]int{}
	}
	c.seen[op+"/"+outcome]++
}

func (c *countingRecorder) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[key]
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type authFixture struct {
	svc      *AuthService
	store    *memStore
	mock     sqlmock.Sqlmock
	signer   *auth.Signer
	hasher   auth.PasswordHasher
	recorder *countingRecorder
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	signer, err := auth.NewSigner(testSecret)
	require.NoError(t, err)

	store := newMemStore()
	rec := &countingRecorder{}
	svc := NewAuthService(db, store, hasher, signer, logging.Nop(), WithOutcomeRecorder(rec))
	return &authFixture{svc: svc, store: store, mock: mock, signer: signer, hasher: hasher, recorder: rec}
}

// registerAndLogin creates alice and returns her user and first token pair.
func (f *authFixture) registerAndLogin(t *testing.T) (*models.User, *TokenPair) {
	t.Helper()
	u, err := f.svc.Register(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := f.svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	return u, pair
}

func requireKind(t *testing.T, err error, want *Error) *Error {
	t.Helper()
	require.Error(t, err)
	if !errors.Is(err, want) {
		t.Fatalf("want kind %s, got %v", want.Kind, err)
	}
	var e *Error
	require.True(t, errors.As(err, &e))
	return e
}
