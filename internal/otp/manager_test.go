package otp

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/fitness-api/internal/logging"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*Challenge
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[int64]*Challenge{}}
}

func (s *memoryStore) Replace(_ context.Context, c *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.Email == c.Email {
			delete(s.rows, id)
		}
	}
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *memoryStore) FindValid(_ context.Context, email, code string, now time.Time) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.Email == email && row.Code == code && now.Before(row.ExpiresAt) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, errChallengeNotFound
}

func (s *memoryStore) MarkVerified(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.VerifiedAt = &at
	}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *memoryStore) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.Email == email {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *memoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, row := range s.rows {
		if !now.Before(row.ExpiresAt) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type recordingSender struct {
	codes map[string]string
	err   error
}

func (s *recordingSender) SendOTPEmail(_ context.Context, to, code string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.codes == nil {
		s.codes = map[string]string{}
	}
	s.codes[to] = code
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestManager(store Store, sender Sender) (*Manager, *testClock) {
	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(store, sender, logging.NewNopLogger(), 10*time.Minute)
	m.now = clock.now
	return m, clock
}

func TestManager_IssueAndVerify(t *testing.T) {
	store := newMemoryStore()
	sender := &recordingSender{}
	m, _ := newTestManager(store, sender)
	ctx := context.Background()

	require.NoError(t, m.Issue(ctx, "ann@example.com"))
	code := sender.codes["ann@example.com"]
	require.Len(t, code, 6)

	require.NoError(t, m.Verify(ctx, "ann@example.com", code))
	// verification does not consume
	require.NoError(t, m.Verify(ctx, "ann@example.com", code))

	assert.ErrorIs(t, m.Verify(ctx, "ann@example.com", "000000"), ErrInvalidCode)
	assert.ErrorIs(t, m.Verify(ctx, "bob@example.com", code), ErrInvalidCode)
}

func TestManager_IssueSupersedesPreviousCode(t *testing.T) {
	store := newMemoryStore()
	sender := &recordingSender{}
	m, _ := newTestManager(store, sender)
	ctx := context.Background()

	codes := []string{"111111", "222222"}
	m.generate = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	require.NoError(t, m.Issue(ctx, "ann@example.com"))
	require.NoError(t, m.Issue(ctx, "ann@example.com"))

	assert.Equal(t, 1, store.count())
	assert.ErrorIs(t, m.Verify(ctx, "ann@example.com", "111111"), ErrInvalidCode)
	assert.NoError(t, m.Verify(ctx, "ann@example.com", "222222"))
}

func TestManager_ExpiredCodeRejected(t *testing.T) {
	store := newMemoryStore()
	sender := &recordingSender{}
	m, clock := newTestManager(store, sender)
	ctx := context.Background()

	require.NoError(t, m.Issue(ctx, "ann@example.com"))
	code := sender.codes["ann@example.com"]

	clock.t = clock.t.Add(10 * time.Minute)
	assert.ErrorIs(t, m.Verify(ctx, "ann@example.com", code), ErrInvalidCode)
}

func TestManager_DeliveryFailureRollsBack(t *testing.T) {
	store := newMemoryStore()
	sender := &recordingSender{err: errors.New("smtp down")}
	m, _ := newTestManager(store, sender)

	err := m.Issue(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 0, store.count())
}

func TestManager_DeliveryFailureLeavesLoggingToSender(t *testing.T) {
	var buf bytes.Buffer
	store := newMemoryStore()
	m := NewManager(store, &recordingSender{err: errors.New("smtp down")}, logging.NewWithWriter(&buf), 10*time.Minute)

	err := m.Issue(context.Background(), "ann@example.com")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Empty(t, buf.String())
}

func TestManager_ConsumeAndSweep(t *testing.T) {
	store := newMemoryStore()
	sender := &recordingSender{}
	m, clock := newTestManager(store, sender)
	ctx := context.Background()

	require.NoError(t, m.Issue(ctx, "ann@example.com"))
	require.NoError(t, m.Issue(ctx, "bob@example.com"))

	m.Consume(ctx, "ann@example.com")
	assert.Equal(t, 1, store.count())

	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.t = clock.t.Add(11 * time.Minute)
	n, err = m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, store.count())
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, codeMin)
		assert.LessOrEqual(t, n, codeMax)
	}
}
