package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/shared/biztime"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisGroupGate(t *testing.T) {
	mr, client := setupMiniRedis(t)
	gate := NewRedisGroupGate(client)
	ctx := context.Background()

	ok, err := gate.TryAcquire(ctx, "pledge_created:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.TryAcquire(ctx, "pledge_created:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = gate.TryAcquire(ctx, "pledge_created:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGroupGate_Unavailable(t *testing.T) {
	mr, client := setupMiniRedis(t)
	mr.Close()

	_, err := NewRedisGroupGate(client).TryAcquire(context.Background(), "g", time.Minute)
	assert.Error(t, err)
}

func TestRedisGroupGate_Release(t *testing.T) {
	_, client := setupMiniRedis(t)
	gate := NewRedisGroupGate(client)
	ctx := context.Background()

	ok, err := gate.TryAcquire(ctx, "donor_receipt:4", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, gate.Release(ctx, "donor_receipt:4"))
	ok, err = gate.TryAcquire(ctx, "donor_receipt:4", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGroupGate_Release(t *testing.T) {
	gate := NewMemoryGroupGate(nil)
	ctx := context.Background()

	ok, _ := gate.TryAcquire(ctx, "donor_receipt:4", time.Minute)
	require.True(t, ok)
	require.NoError(t, gate.Release(ctx, "donor_receipt:4"))
	ok, _ = gate.TryAcquire(ctx, "donor_receipt:4", time.Minute)
	assert.True(t, ok)
}

func TestMemoryGroupGate(t *testing.T) {
	clock := biztime.NewFixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	gate := NewMemoryGroupGate(clock)
	ctx := context.Background()

	ok, _ := gate.TryAcquire(ctx, "goal_reached:9:7", 10*time.Minute)
	assert.True(t, ok)
	ok, _ = gate.TryAcquire(ctx, "goal_reached:9:7", 10*time.Minute)
	assert.False(t, ok)
	ok, _ = gate.TryAcquire(ctx, "goal_reached:9:0", 10*time.Minute)
	assert.True(t, ok)

	clock.Advance(10 * time.Minute)
	ok, _ = gate.TryAcquire(ctx, "goal_reached:9:7", 10*time.Minute)
	assert.True(t, ok)
}

func TestRedisTransactionLocker_Exclusive(t *testing.T) {
	_, client := setupMiniRedis(t)
	locker := NewRedisTransactionLocker(client, 5*time.Second, logger.NewNopLogger())
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "payment:tx:stripe:ch_1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestRedisTransactionLocker_BusyIsConflict(t *testing.T) {
	_, client := setupMiniRedis(t)
	locker := NewRedisTransactionLocker(client, 150*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(ctx, "k")
	assert.True(t, apperrors.IsConflictError(err))
}

func TestRedisTransactionLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setupMiniRedis(t)
	locker := NewRedisTransactionLocker(client, time.Second, logger.NewNopLogger())
	ctx := context.Background()

	unlockFirst, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	// The first holder's lease expires and another caller takes over.
	mr.FastForward(2 * time.Second)
	unlockSecond, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	unlockFirst()
	assert.True(t, mr.Exists(txLockKeyPrefix+"k"))

	unlockSecond()
	assert.False(t, mr.Exists(txLockKeyPrefix+"k"))
}

func TestMemoryTransactionLocker(t *testing.T) {
	locker := NewMemoryTransactionLocker()

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locker.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()

	unlock()
	unlock()

	again, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
	assert.Empty(t, locker.locks)
}
