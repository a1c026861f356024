package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"task_tracker/internal/cache"
	"task_tracker/internal/logger"
)

// Cached remembers raw generator text per prompt. Only successful, non-empty
// responses are stored; cache errors fall through to the wrapped generator.
type Cached struct {
	next  Generator
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps next. It returns next unchanged when c is nil or ttl is not
// positive.
func NewCached(next Generator, c cache.Cache, ttl time.Duration) Generator {
	if next == nil || c == nil || ttl <= 0 {
		return next
	}
	return &Cached{next: next, cache: c, ttl: ttl}
}

func (c *Cached) Name() string {
	return c.next.Name()
}

func (c *Cached) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)

	if val, found, err := c.cache.Get(ctx, key); err != nil {
		logger.WithContext(ctx).Warn("generator cache get failed", "error", err)
	} else if found {
		return string(val), nil
	}

	out, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if out != "" {
		if err := c.cache.Set(ctx, key, []byte(out), c.ttl); err != nil {
			logger.WithContext(ctx).Warn("generator cache set failed", "error", err)
		}
	}
	return out, nil
}

func (c *Cached) key(prompt string) string {
	sum := sha256.Sum256([]byte(c.next.Name() + "\x00" + prompt))
	return "gen:" + hex.EncodeToString(sum[:])
}
