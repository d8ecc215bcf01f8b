// Package lock guards a journal run so that two runs for the same day or
// week do not interleave their writes.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another run holds the key
var ErrLocked = errors.New("another run holds the lock")

// DefaultTTL bounds how long a crashed holder blocks other runs
const DefaultTTL = 30 * time.Minute

// Release gives a held lock back
type Release func(ctx context.Context) error

// Locker acquires named locks
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Key returns the lock key of a run kind and period, e.g. "daily:2024-01-15"
func Key(kind, period string) string {
	return kind + ":" + period
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Local is a Locker for a single process
type Local struct {
	mu   sync.Mutex
	held map[string]string
}

// NewLocal creates an in-process locker
func NewLocal() *Local {
	return &Local{held: make(map[string]string)}
}

func (l *Local) Acquire(_ context.Context, key string) (Release, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}
	l.held[key] = token

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every process using the same Redis
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker connects to redisURL
func NewRedisLocker(redisURL string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisLockerWithClient(client, ttl), nil
}

// NewRedisLockerWithClient uses an existing client
func NewRedisLockerWithClient(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, prefix: "journal_lock:", ttl: ttl}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	full := r.prefix + key
	ok, err := r.client.SetNX(ctx, full, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{full}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// Client returns the underlying Redis client
func (r *RedisLocker) Client() *redis.Client {
	return r.client
}

// Ping checks if Redis is reachable
func (r *RedisLocker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisLocker) Close() error {
	return r.client.Close()
}

var (
	_ Locker = (*Local)(nil)
	_ Locker = (*RedisLocker)(nil)
)
