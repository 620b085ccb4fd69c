// Package lock provides short leases used to keep robot cycles from
// overlapping. A Redis-backed implementation coordinates several replicas;
// the local one covers single-process deployments and tests.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Release gives a held lease back. Releasing a lease that already expired
// or was taken over by another holder is a no-op.
type Release func(ctx context.Context) error

// Locker hands out exclusive, expiring leases by key.
type Locker interface {
	// TryLock acquires key for ttl without waiting. ok is false when the
	// key is held by someone else.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release Release, ok bool, err error)
}

// ErrInvalidTTL is returned for non-positive lease durations.
var ErrInvalidTTL = errors.New("lock ttl must be positive")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	Client redis.Cmdable
	Prefix string
}

// NewRedisLocker wraps an existing client.
func NewRedisLocker(c redis.Cmdable) *RedisLocker {
	return &RedisLocker{Client: c, Prefix: "medrobot:lock:"}
}

// TryLock implements Locker.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Release, bool, error) {
	if ttl <= 0 {
		return nil, false, ErrInvalidTTL
	}
	full := l.Prefix + key
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.Client, []string{full}, token).Err()
	}, true, nil
}

// LocalLocker implements Locker in memory for a single process.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]lease
	nowFn func() time.Time
}

type lease struct {
	token   string
	expires time.Time
}

// NewLocalLocker returns an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]lease), nowFn: time.Now}
}

// TryLock implements Locker.
func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Release, bool, error) {
	if ttl <= 0 {
		return nil, false, ErrInvalidTTL
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, false, nil
	}
	token := uuid.NewString()
	l.held[key] = lease{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}
