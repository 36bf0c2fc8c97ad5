package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/otp"
	"github.com/redmonkez12/fitness-api/internal/ratelimit"
	"github.com/redmonkez12/fitness-api/internal/user"
)

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*user.User{}}
}

func (m *memoryUsers) Create(_ context.Context, name, email, passwordHash string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash}
	m.byEmail[email] = u
	return u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return user.ErrNotFound
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

// fakeOTP accepts one code per email, expired codes can be simulated by deleting them
type fakeOTP struct {
	codes     map[string]string
	issueErr  error
	consumed  []string
	issuedFor []string
}

func newFakeOTP() *fakeOTP {
	return &fakeOTP{codes: map[string]string{}}
}

func (f *fakeOTP) Issue(_ context.Context, email string) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issuedFor = append(f.issuedFor, email)
	f.codes[email] = "123456"
	return nil
}

func (f *fakeOTP) Verify(_ context.Context, email, code string) error {
	if c, ok := f.codes[email]; ok && c == code {
		return nil
	}
	return otp.ErrInvalidCode
}

func (f *fakeOTP) Consume(_ context.Context, email string) {
	f.consumed = append(f.consumed, email)
	delete(f.codes, email)
}

type capturingMailer struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (c *capturingMailer) SendPasswordResetEmail(_ context.Context, to, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.tokens == nil {
		c.tokens = map[string]string{}
	}
	c.tokens[to] = token
	return nil
}

type testEnv struct {
	users   *memoryUsers
	otp     *fakeOTP
	mailer  *capturingMailer
	issuer  *Issuer
	hasher  *PasswordHasher
	service *Service
	handler *Handler
	redis   *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens, err := NewJWTService(testKey)
	require.NoError(t, err)

	env := &testEnv{
		users:  newMemoryUsers(),
		otp:    newFakeOTP(),
		mailer: &capturingMailer{},
		issuer: NewIssuer(tokens, 7*24*time.Hour),
		hasher: NewPasswordHasher(4),
		redis:  mr,
	}
	env.service = NewService(env.users, env.otp, env.issuer, env.hasher,
		NewPasswordResetRepository(client), env.mailer, logging.NewNopLogger())
	env.handler = NewHandler(env.service, ratelimit.NewLimiter(client), 2*time.Minute)

	return env
}

// seedUser registers a user directly in the store
func (e *testEnv) seedUser(t *testing.T, name, email, password string) *user.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	u, err := e.users.Create(context.Background(), name, strings.ToLower(email), hash)
	require.NoError(t, err)
	return u
}
