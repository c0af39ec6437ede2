package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	// txLockKeyPrefix is the prefix for per-transaction webhook locks
	txLockKeyPrefix = "lock:"

	DefaultLockTTL = 30 * time.Second
)

var errLockHeld = errors.New("lock held")

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTransactionLocker serialises webhook processing per transaction
// across instances. The TTL bounds how long a crashed holder blocks others.
type RedisTransactionLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger logger.Interface
}

func NewRedisTransactionLocker(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisTransactionLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisTransactionLocker{
		client: client,
		ttl:    ttl,
		wait:   ttl,
		logger: log.Named("cache.txlock"),
	}
}

// Lock blocks until key is free, ctx ends or the wait budget runs out.
func (l *RedisTransactionLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := txLockKeyPrefix + key
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to acquire lock %s: %w", key, err))
		}
		if !ok {
			return struct{}{}, errLockHeld
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(l.wait),
	)
	if errors.Is(err, errLockHeld) {
		return nil, apperrors.NewConflictError("transaction is being processed", key)
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// Release on a fresh context so a cancelled request still unlocks.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warnw("failed to release transaction lock", "key", key, "error", err)
		}
	}, nil
}

// MemoryTransactionLocker is a keyed mutex for single-process deployments.
type MemoryTransactionLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewMemoryTransactionLocker() *MemoryTransactionLocker {
	return &MemoryTransactionLocker{locks: make(map[string]*keyedLock)}
}

func (l *MemoryTransactionLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, kl, true) })
	}, nil
}

func (l *MemoryTransactionLocker) release(key string, kl *keyedLock, held bool) {
	if held {
		<-kl.ch
	}
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
