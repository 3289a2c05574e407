package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Only the owner may release or extend a lock; both scripts compare the
// stored token first.
var (
	releaseLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	extendLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
)

// Locker hands out per-envelope distributed locks so two consumer instances
// never process the same envelope concurrently.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker creates a lock factory with the given TTL.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Lock is an acquired distributed lock.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire attempts to take the lock for the given envelope. It does not
// block: ok is false when another instance holds the lock.
func (l *Locker) Acquire(ctx context.Context, envelopeID string) (*Lock, bool, error) {
	key := "lock:envelope:" + envelopeID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock for %s: %w", envelopeID, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{client: l.client, key: key, token: token}, true, nil
}

// Extend pushes the lock expiry out by ttl.
func (l *Lock) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := extendLockScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("failed to extend lock: %w", err)
	}
	if val, ok := result.(int64); !ok || val == 0 {
		return errors.New("lock not held or expired")
	}
	return nil
}

// Release frees the lock. Releasing a lock that already expired is not an
// error; the envelope is simply up for grabs again.
func (l *Lock) Release(ctx context.Context) error {
	_, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.token).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
