package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/linkcase/linkcase/auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// memoryStore backs the repositories with maps so the core's semantics can be
// exercised without a database. Upserts replace whole rows keyed by user id,
// mirroring the unique constraints the real store relies on.
type memoryStore struct {
	mu sync.Mutex

	users      map[int64]*auth.User
	nextUserID int64

	secrets      map[int64]*auth.SecretKey
	nextSecretID int64

	tokens      map[int64]*auth.Token
	nextTokenID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:   map[int64]*auth.User{},
		secrets: map[int64]*auth.SecretKey{},
		tokens:  map[int64]*auth.Token{},
	}
}

func notFound(what string) error {
	return goerrors.New(what+" not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

// --- RepositoryManager ---

func (s *memoryStore) Users() auth.Users           { return (*memoryUsers)(s) }
func (s *memoryStore) SecretKeys() auth.SecretKeys { return (*memorySecretKeys)(s) }
func (s *memoryStore) Tokens() auth.Tokens         { return (*memoryTokens)(s) }

func (s *memoryStore) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return f(ctx, bun.Tx{})
	}
}

func (s *memoryStore) Validate() error { return nil }
func (s *memoryStore) MustValidate()   {}

// --- Users ---

type memoryUsers memoryStore

func (r *memoryUsers) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	return r.CreateTx(ctx, nil, user)
}

func (r *memoryUsers) CreateTx(_ context.Context, _ bun.IDB, user *auth.User) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, goerrors.New("could not create user", goerrors.CategoryConflict)
		}
	}

	r.nextUserID++
	user.ID = r.nextUserID
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return user, nil
}

func (r *memoryUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, notFound("user")
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (r *memoryUsers) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (r *memoryUsers) Update(_ context.Context, user *auth.User) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[user.ID]
	if !ok {
		return nil, notFound("user")
	}
	current.Username = user.Username
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Email = user.Email
	cp := *current
	return &cp, nil
}

func (r *memoryUsers) ChangePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.ChangePasswordTx(ctx, nil, id, hashedPassword)
}

func (r *memoryUsers) ChangePasswordTx(_ context.Context, _ bun.IDB, id int64, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return notFound("user")
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (r *memoryUsers) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return notFound("user")
	}
	u.IsActive = active
	return nil
}

func (r *memoryUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	// cascade
	for sid, sk := range r.secrets {
		if sk.UserID == id {
			delete(r.secrets, sid)
		}
	}
	for tid, tk := range r.tokens {
		if tk.UserID == id {
			delete(r.tokens, tid)
		}
	}
	return nil
}

// --- SecretKeys ---

type memorySecretKeys memoryStore

func (r *memorySecretKeys) Rotate(ctx context.Context, userID int64) (*auth.SecretKey, error) {
	return r.RotateTx(ctx, nil, userID)
}

func (r *memorySecretKeys) RotateTx(_ context.Context, _ bun.IDB, userID int64) (*auth.SecretKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := randomHex(32)

	for _, sk := range r.secrets {
		if sk.UserID == userID {
			sk.Key = key
			sk.Created = time.Now()
			cp := *sk
			return &cp, nil
		}
	}

	r.nextSecretID++
	sk := &auth.SecretKey{
		ID:      r.nextSecretID,
		Key:     key,
		Created: time.Now(),
		UserID:  userID,
	}
	r.secrets[sk.ID] = sk
	cp := *sk
	return &cp, nil
}

func (r *memorySecretKeys) GetByUser(_ context.Context, userID int64) (*auth.SecretKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sk := range r.secrets {
		if sk.UserID == userID {
			cp := *sk
			return &cp, nil
		}
	}
	return nil, notFound("secret key")
}

func (r *memorySecretKeys) GetByKey(_ context.Context, key string) (*auth.SecretKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sk := range r.secrets {
		if sk.Key == key {
			cp := *sk
			return &cp, nil
		}
	}
	return nil, notFound("secret key")
}

// --- Tokens ---

type memoryTokens memoryStore

func (r *memoryTokens) Upsert(ctx context.Context, userID int64, access, refresh string) (*auth.Token, error) {
	return r.UpsertTx(ctx, nil, userID, access, refresh)
}

func (r *memoryTokens) UpsertTx(_ context.Context, _ bun.IDB, userID int64, access, refresh string) (*auth.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tk := range r.tokens {
		if tk.UserID == userID {
			tk.AccessToken = access
			tk.RefreshToken = refresh
			tk.Created = time.Now()
			cp := *tk
			return &cp, nil
		}
	}

	r.nextTokenID++
	tk := &auth.Token{
		ID:           r.nextTokenID,
		AccessToken:  access,
		RefreshToken: refresh,
		Created:      time.Now(),
		UserID:       userID,
	}
	r.tokens[tk.ID] = tk
	cp := *tk
	return &cp, nil
}

func (r *memoryTokens) GetByUser(_ context.Context, userID int64) (*auth.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tk := range r.tokens {
		if tk.UserID == userID {
			cp := *tk
			return &cp, nil
		}
	}
	return nil, notFound("token")
}

func (r *memoryTokens) GetByAccessToken(_ context.Context, access string) (*auth.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tk := range r.tokens {
		if tk.AccessToken == access {
			cp := *tk
			if u, ok := r.users[tk.UserID]; ok {
				ucp := *u
				cp.User = &ucp
			}
			return &cp, nil
		}
	}
	return nil, notFound("token")
}

func (r *memoryTokens) GetByRefreshToken(_ context.Context, refresh string) (*auth.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tk := range r.tokens {
		if tk.RefreshToken == refresh {
			cp := *tk
			return &cp, nil
		}
	}
	return nil, auth.ErrInvalidRefreshToken
}

func (r *memoryTokens) Delete(_ context.Context, record *auth.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, record.ID)
	return nil
}

var keyCounter int64

func randomHex(n int) string {
	c := atomic.AddInt64(&keyCounter, 1)
	return fmt.Sprintf("%0*x", n*2, c)
}

// testConfig satisfies auth.Config.
type testConfig struct {
	scheme          string
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

func (c testConfig) GetAuthScheme() string {
	if c.scheme == "" {
		return "Bearer"
	}
	return c.scheme
}

func (c testConfig) GetAccessTokenLifetime() time.Duration {
	if c.accessLifetime == 0 {
		return 10 * time.Minute
	}
	return c.accessLifetime
}

func (c testConfig) GetRefreshTokenLifetime() time.Duration {
	if c.refreshLifetime == 0 {
		return 24 * time.Hour
	}
	return c.refreshLifetime
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) EnqueueResetPassword(email, secretKey string) {
	m.Called(email, secretKey)
}

var (
	_ auth.RepositoryManager = (*memoryStore)(nil)
	_ auth.Notifier          = (*MockNotifier)(nil)
)
