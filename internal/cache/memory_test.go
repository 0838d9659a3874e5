package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, ttl time.Duration) (Store[string], *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Now()}
	s, err := New[string](Config{Name: "test", TTL: ttl, Now: clk.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clk
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	require.NoError(t, s.Put(ctx, "k", "v"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// Get no consume
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestPutCollision(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.ErrorIs(t, s.Put(ctx, "k", "v2"), ErrKeyExists)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
}

func TestPutEmptyKey(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	require.ErrorIs(t, s.Put(context.Background(), "", "v"), ErrEmptyKey)
}

func TestTakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	require.NoError(t, s.Put(ctx, "k", "v"))
	v, err := s.Take(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = s.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t, 24*time.Hour)

	require.NoError(t, s.Put(ctx, "k", "v"))
	clk.Advance(24*time.Hour - time.Second)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	clk.Advance(2 * time.Second)
	_, err = s.Take(ctx, "k")
	require.ErrorIs(t, err, ErrExpired)
	assert.True(t, IsNotFound(err))

	// Se eliminó al detectar el vencimiento.
	_, err = s.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpiredKeyCanBeReused(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t, time.Minute)

	require.NoError(t, s.Put(ctx, "k", "old"))
	clk.Advance(2 * time.Minute)
	require.NoError(t, s.Put(ctx, "k", "new"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestConcurrentTakeExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	for round := 0; round < 50; round++ {
		require.NoError(t, s.Put(ctx, "k", "v"))

		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := s.Take(ctx, "k"); err == nil {
					wins.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()
		require.Equal(t, int32(1), wins.Load(), "round %d", round)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	require.NoError(t, s.Put(ctx, "a", "1"))
	_, _ = s.Get(ctx, "a")
	_, _ = s.Get(ctx, "missing")

	st := s.Stats()
	assert.Equal(t, "test", st.Name)
	assert.Equal(t, "memory", st.Driver)
	assert.Equal(t, 1, st.Keys)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestNewRequiresTTL(t *testing.T) {
	_, err := New[string](Config{})
	require.ErrorIs(t, err, ErrNoTTL)
}

func TestNewFallsBackToMemory(t *testing.T) {
	for _, driver := range []string{"", "memory", "redis"} {
		s, err := New[string](Config{Driver: driver, Name: "d", TTL: time.Minute})
		require.NoError(t, err)
		assert.Equal(t, "memory", s.Stats().Driver, driver)
		require.NoError(t, s.Close())
	}
}

func TestOnEvictOnlyForExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Now()}
	var evicted []string
	s, err := New[string](Config{
		Name:    "test",
		TTL:     time.Hour,
		Now:     clk.Now,
		OnEvict: func(_, key string) { evicted = append(evicted, key) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Put(ctx, "live", "v"))
	_, err = s.Take(ctx, "live")
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "gone", "v"))
	require.NoError(t, s.Delete(ctx, "gone"))
	assert.Empty(t, evicted)

	require.NoError(t, s.Put(ctx, "old", "v"))
	clk.Advance(2 * time.Hour)
	_, err = s.Get(ctx, "old")
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, []string{"old"}, evicted)
}

func TestSetReplacesAndRenewsTTL(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t, time.Hour)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	clk.Advance(50 * time.Minute)
	require.NoError(t, s.Set(ctx, "k", "v2"))
	clk.Advance(50 * time.Minute)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	require.ErrorIs(t, s.Set(ctx, "", "v"), ErrEmptyKey)
}

func TestConcurrentSetLeavesOneValue(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "k", "v"))
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, s.Len())
}
