package donation

import (
	"context"
	"time"
)

// Repository lookups return a not_found AppError when nothing matches.
type Repository interface {
	Create(ctx context.Context, d *Donation) error
	// Update persists d if its stored version is d.Version()-1 and fails
	// with a conflict otherwise.
	Update(ctx context.Context, d *Donation) error
	// SetTransactionID stores the processor reference on a donation that has
	// none yet. It does not touch the version.
	SetTransactionID(ctx context.Context, id uint, transactionID string) error
	GetByID(ctx context.Context, id uint) (*Donation, error)
	GetByOrderID(ctx context.Context, orderID string) (*Donation, error)
	GetByTransactionID(ctx context.Context, gateway, transactionID string) (*Donation, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*Donation, error)
	ListBackerUserIDs(ctx context.Context, campaignID uint) ([]uint, error)
}

// TransitionLedger records each committed (transaction id, status) pair once.
type TransitionLedger interface {
	// Append returns ErrAlreadyRecorded when the pair already exists.
	Append(ctx context.Context, entry LedgerEntry) error
}

type LedgerEntry struct {
	Gateway       string
	TransactionID string
	DonationID    uint
	FromStatus    Status
	ToStatus      Status
	EventType     string
	RecordedAt    time.Time
}
