package cache

import (
	"context"
	"time"
)

// Tiered checks l1 before l2 and backfills l1 on an l2 hit.
type Tiered struct {
	l1       Cache
	l2       Cache
	l1Expire time.Duration
}

func NewTiered(l1, l2 Cache, l1Expire time.Duration) *Tiered {
	return &Tiered{l1: l1, l2: l2, l1Expire: l1Expire}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := t.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	val, found, err = t.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	_ = t.l1.Set(ctx, key, val, t.l1Expire)
	return val, true, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.l1.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return t.l2.Set(ctx, key, value, ttl)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	if err := t.l1.Delete(ctx, key); err != nil {
		return err
	}
	return t.l2.Delete(ctx, key)
}
