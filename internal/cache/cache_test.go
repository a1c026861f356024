package cache

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestTiered_BackfillsL1(t *testing.T) {
	ctx := context.Background()
	l1, l2 := newMapCache(), newMapCache()
	require.NoError(t, l2.Set(ctx, "k", []byte("v"), time.Minute))

	c := NewTiered(l1, l2, time.Minute)
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))

	_, ok, _ = l1.Get(ctx, "k")
	assert.True(t, ok, "l2 hit should backfill l1")
}

func TestTiered_SetAndDeleteBothLevels(t *testing.T) {
	ctx := context.Background()
	l1, l2 := newMapCache(), newMapCache()
	c := NewTiered(l1, l2, time.Minute)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, 1, l1.sets)
	assert.Equal(t, 1, l2.sets)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLocal_SetGet(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(1 << 20)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Set(ctx, "k", []byte("hello"), time.Minute))
	l.Wait()

	val, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(val))
}

// Runs only if REDIS_ADDR is set.
func TestRedisIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), db, "test:")
	require.NoError(t, err)
	defer r.Close()

	key := "enrich:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	require.NoError(t, r.Set(ctx, key, []byte("v"), 5*time.Second))

	val, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))

	require.NoError(t, r.Delete(ctx, key))
	_, ok, err = r.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
