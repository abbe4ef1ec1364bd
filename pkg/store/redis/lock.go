package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"statustracker/pkg/logger"
)

const (
	lockKeyPrefix      = "statustracker:update-lock:"
	defaultLockTTL     = 2 * time.Minute
	lockAcquireTimeout = 5 * time.Second
)

// releaseScript deletes the key only while it still holds our token
const releaseScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// UpdateLock is a Redis lock held for the duration of one update of a table.
type UpdateLock struct {
	client    *redis.Client
	lockKey   string
	lockValue string // unique token, so we never release another writer's lock
	ttl       time.Duration
	isHeld    bool
	mu        sync.Mutex
}

// LockKey returns the key guarding the table file at path.
func LockKey(path string) string {
	return lockKeyPrefix + path
}

// NewUpdateLock creates a lock on key. A nil client yields a lock that is
// always granted, for single-instance setups.
func NewUpdateLock(client *redis.Client, key string, ttl time.Duration) *UpdateLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &UpdateLock{
		client:    client,
		lockKey:   key,
		lockValue: uuid.NewString(),
		ttl:       ttl,
	}
}

// TryLock tries to take the lock without waiting for it
func (l *UpdateLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == nil {
		l.isHeld = true
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(acquireCtx, l.lockKey, l.lockValue, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "update lock %s already held by another writer", l.lockKey)
		return false, nil
	}

	l.isHeld = true
	logger.DebugCtx(ctx, "update lock %s acquired", l.lockKey)
	return true, nil
}

// Unlock releases the lock if we still own it
func (l *UpdateLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.isHeld {
		return nil
	}
	l.isHeld = false

	if l.client == nil {
		return nil
	}

	result, err := l.client.Eval(ctx, releaseScript, []string{l.lockKey}, l.lockValue).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		logger.WarnCtx(ctx, "update lock %s expired before release", l.lockKey)
	}
	return nil
}

// IsHeld reports whether this instance holds the lock
func (l *UpdateLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHeld
}
