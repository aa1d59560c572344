package cache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// storeContract checks behavior every backend must share.
func storeContract(t *testing.T, s Store, clock *fakeNow) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("v2"), time.Minute))
	got, _, _ = s.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Set(ctx, "forever", []byte("x"), 0))

	clock.Advance(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its ttl")

	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok, "ttl 0 never expires")
}

func TestMemory(t *testing.T) {
	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemoryWithClock(clock.Now)
	storeContract(t, m, clock)
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'X'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[0] = 'Y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	s, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close()

	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.Now
	storeContract(t, s, clock)
}

func TestSQLitePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("kept"), time.Hour))
	require.NoError(t, s.Set(ctx, "old", []byte("gone"), time.Millisecond))
	require.NoError(t, s.Close())

	time.Sleep(5 * time.Millisecond)

	s, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", string(got))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "expired rows are purged on open")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Options{Backend: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: "memcached"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, Options{Backend: "redis"})
	assert.Error(t, err, "redis without an address")
}

func TestRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "127.0.0.1:1", "test:", nil)
	assert.Error(t, err)
}
