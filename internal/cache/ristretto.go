package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Local is an in-process cache bounded by total value size.
type Local struct {
	c *ristretto.Cache[string, []byte]
}

// NewLocal creates a ristretto-backed cache holding at most maxCostBytes of values.
func NewLocal(maxCostBytes int64) (*Local, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Local{c: c}, nil
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := l.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set is eventually visible; ristretto buffers writes.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	l.c.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func (l *Local) Wait() {
	l.c.Wait()
}

func (l *Local) Close() {
	l.c.Close()
}
