package notification

import (
	"context"
	"errors"
	"time"
)

// ErrGroupQueued is returned by Create when a queued job already holds the group.
var ErrGroupQueued = errors.New("a mail job for this group is already queued")

type MailJobRepository interface {
	Create(ctx context.Context, job *MailJob) error
	Update(ctx context.Context, job *MailJob) error
	GetByID(ctx context.Context, id string) (*MailJob, error)
	// ListDue returns queued jobs whose next attempt is at or before now,
	// oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*MailJob, error)
}
