package campaign

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	// Update is an optimistic write guarded by c.Version()-1.
	Update(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id uint) (*Campaign, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Campaign, error)
}
