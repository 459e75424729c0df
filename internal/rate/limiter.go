// Package rate implementa rate limiting de ventana fija.
// RedisLimiter sirve para varios Hubs detrás de un balanceador; MemoryLimiter para un solo nodo.
package rate

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config selecciona e inicializa un Limiter.
type Config struct {
	Kind      string // "memory" | "redis"
	RedisAddr string
	RedisDB   int
	Prefix    string
	Max       int
	Window    time.Duration
}

// New construye el limiter configurado. Max <= 0 desactiva el límite (nil, nil).
func New(ctx context.Context, cfg Config) (Limiter, error) {
	if cfg.Max <= 0 {
		return nil, nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	switch strings.ToLower(cfg.Kind) {
	case "redis":
		client := rdb.NewClient(&rdb.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("rate: redis ping failed: %w", err)
		}
		return NewRedisLimiter(client, cfg.Prefix, cfg.Max, cfg.Window), nil
	case "", "memory":
		return NewMemoryLimiter(cfg.Max, cfg.Window), nil
	default:
		return nil, fmt.Errorf("rate: unknown limiter kind %q", cfg.Kind)
	}
}

// fixedWindowScript incrementa el contador y fija el TTL en el primer hit, en
// un solo round-trip. Devuelve {hits, pttl_ms}.
var fixedWindowScript = rdb.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter comparte la ventana fija entre varios Hubs.
type RedisLimiter struct {
	client rdb.UniversalClient
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "fleethub:rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window, now: time.Now}
}

func (l *RedisLimiter) key(key string, at time.Time) string {
	start := at.UTC().Truncate(l.window).Unix()
	return l.prefix + strings.ReplaceAll(key, " ", "_") + ":" + strconv.FormatInt(start, 10)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := fixedWindowScript.Run(ctx, l.client, []string{l.key(key, l.now())}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("rate: redis: unexpected reply %v", vals)
	}
	return fixedWindowResult(vals[0], l.max, time.Duration(vals[1])*time.Millisecond, l.window), nil
}

// Ping lo usa /readyz.
func (l *RedisLimiter) Ping(ctx context.Context) error { return l.client.Ping(ctx).Err() }

func (l *RedisLimiter) Close() error { return l.client.Close() }

func fixedWindowResult(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}
