package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante in-process de RedisLimiter (misma ventana fija).
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := fmt.Sprintf("%s:%d", strings.ReplaceAll(key, " ", "_"), winStart.Unix())
	ttl := winStart.Add(l.window).Sub(now)

	var hits int64 = 1
	if err := l.c.Add(k, int64(1), l.window); err != nil {
		// ya existe: incremento atómico
		n, err := l.c.IncrementInt64(k, 1)
		if err != nil {
			return Result{}, fmt.Errorf("rate: increment %s: %w", k, err)
		}
		hits = n
	}
	return fixedWindowResult(hits, l.max, ttl, l.window), nil
}
