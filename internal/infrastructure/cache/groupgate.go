package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fundhive/fundhive/internal/shared/biztime"
)

// mailGroupKeyPrefix is the prefix for mail coalescing keys
const mailGroupKeyPrefix = "mail_group:"

// RedisGroupGate coalesces mail groups across instances with SetNX.
type RedisGroupGate struct {
	client *redis.Client
}

func NewRedisGroupGate(client *redis.Client) *RedisGroupGate {
	return &RedisGroupGate{client: client}
}

// TryAcquire returns true the first time group is seen within window.
func (g *RedisGroupGate) TryAcquire(ctx context.Context, group string, window time.Duration) (bool, error) {
	acquired, err := g.client.SetNX(ctx, mailGroupKeyPrefix+group, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire mail group %s: %w", group, err)
	}
	return acquired, nil
}

func (g *RedisGroupGate) Release(ctx context.Context, group string) error {
	if err := g.client.Del(ctx, mailGroupKeyPrefix+group).Err(); err != nil {
		return fmt.Errorf("failed to release mail group %s: %w", group, err)
	}
	return nil
}

// MemoryGroupGate is the single-process gate used when Redis is disabled.
type MemoryGroupGate struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	clock biztime.Clock
}

func NewMemoryGroupGate(clock biztime.Clock) *MemoryGroupGate {
	if clock == nil {
		clock = biztime.System
	}
	return &MemoryGroupGate{seen: make(map[string]time.Time), clock: clock}
}

func (g *MemoryGroupGate) TryAcquire(ctx context.Context, group string, window time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	for k, until := range g.seen {
		if !now.Before(until) {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[group]; ok {
		return false, nil
	}
	g.seen[group] = now.Add(window)
	return true, nil
}

func (g *MemoryGroupGate) Release(ctx context.Context, group string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, group)
	return nil
}
