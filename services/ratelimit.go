package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles an action per key. Reserve returns true when the
// action may proceed now, or false with the remaining wait. Counters are
// best-effort and non-durable; losing them on restart is acceptable.
type RateLimiter interface {
	Reserve(key string) (time.Duration, bool)
}

// MemoryRateLimiter is the in-process implementation, handed to handlers as
// an explicit capability rather than ambient package state.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func NewMemoryRateLimiter(window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *MemoryRateLimiter) Reserve(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[key]; ok {
		if elapsed := now.Sub(last); elapsed < l.window {
			return l.window - elapsed, false
		}
	}
	l.last[key] = now
	return 0, true
}

// RedisRateLimiter shares the window across instances via SET NX PX. Redis
// being unreachable degrades to allowing the action; the limiter protects a
// convenience endpoint, not a correctness invariant.
type RedisRateLimiter struct {
	Client *redis.Client
	Window time.Duration
	Prefix string
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{Client: client, Window: window, Prefix: "ratelimit:test-email:"}
}

func (l *RedisRateLimiter) Reserve(key string) (time.Duration, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := l.Client.SetNX(ctx, l.Prefix+key, 1, l.Window).Result()
	if err != nil {
		log.Printf("rate limiter redis error, allowing request: %v", err)
		return 0, true
	}
	if ok {
		return 0, true
	}

	ttl, err := l.Client.PTTL(ctx, l.Prefix+key).Result()
	if err != nil || ttl < 0 {
		ttl = l.Window
	}
	return ttl, false
}

// NewRateLimiterFromEnv picks Redis when REDIS_URL is set, otherwise the
// in-memory limiter.
func NewRateLimiterFromEnv(redisURL string, window time.Duration) RateLimiter {
	if redisURL == "" {
		return NewMemoryRateLimiter(window)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, falling back to in-memory rate limiter: %v", err)
		return NewMemoryRateLimiter(window)
	}
	return NewRedisRateLimiter(redis.NewClient(opts), window)
}
