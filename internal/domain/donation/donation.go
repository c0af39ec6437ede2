package donation

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/biztime"
)

// ErrInvalidTransition is wrapped by TransitionTo when the move is not allowed.
var ErrInvalidTransition = errors.New("invalid donation status transition")

// Donation is a payment-like entity: a one-off donation or a pledge.
type Donation struct {
	id            uint
	orderID       string
	kind          Kind
	campaignID    uint
	userID        uint
	amount        vo.Money
	gateway       string
	transactionID string
	isOffline     bool
	hasReward     bool
	status        Status
	completedAt   *time.Time
	version       int
	createdAt     time.Time
	updatedAt     time.Time

	events.Recorder
}

type NewParams struct {
	OrderID    string
	Kind       Kind
	CampaignID uint
	UserID     uint
	Amount     vo.Money
	Gateway    string
	IsOffline  bool
	HasReward  bool
}

func NewDonation(p NewParams) (*Donation, error) {
	if p.OrderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if !p.Kind.IsValid() {
		return nil, fmt.Errorf("invalid donation kind %q", p.Kind)
	}
	if p.CampaignID == 0 {
		return nil, fmt.Errorf("campaign ID is required")
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if p.Gateway == "" {
		return nil, fmt.Errorf("gateway is required")
	}

	now := biztime.NowUTC()
	return &Donation{
		orderID:    p.OrderID,
		kind:       p.Kind,
		campaignID: p.CampaignID,
		userID:     p.UserID,
		amount:     p.Amount,
		gateway:    p.Gateway,
		isOffline:  p.IsOffline,
		hasReward:  p.HasReward && p.Kind == KindPledge,
		status:     StatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

type ReconstructParams struct {
	ID            uint
	OrderID       string
	Kind          Kind
	CampaignID    uint
	UserID        uint
	Amount        vo.Money
	Gateway       string
	TransactionID string
	IsOffline     bool
	HasReward     bool
	Status        Status
	CompletedAt   *time.Time
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reconstruct rebuilds a Donation from storage without validation or events.
func Reconstruct(p ReconstructParams) *Donation {
	return &Donation{
		id:            p.ID,
		orderID:       p.OrderID,
		kind:          p.Kind,
		campaignID:    p.CampaignID,
		userID:        p.UserID,
		amount:        p.Amount,
		gateway:       p.Gateway,
		transactionID: p.TransactionID,
		isOffline:     p.IsOffline,
		hasReward:     p.HasReward,
		status:        p.Status,
		completedAt:   p.CompletedAt,
		version:       p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}

// Transition describes one committed status change.
type Transition struct {
	From Status
	To   Status
}

// TransitionTo moves the donation to status and records the matching
// status-update event carrying both old and new status.
func (d *Donation) TransitionTo(to Status) (Transition, error) {
	if !CanTransition(d.kind, d.status, to) {
		return Transition{}, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, d.kind, d.status, to)
	}

	now := biztime.NowUTC()
	from := d.status
	d.status = to
	if to == StatusCompleted {
		d.completedAt = &now
	}
	d.updatedAt = now
	d.version++

	d.Record(NewStatusUpdateEvent(d, from, to, now))
	return Transition{From: from, To: to}, nil
}

// AttachTransaction stores the processor transaction id the first time it is known.
func (d *Donation) AttachTransaction(transactionID string) {
	if d.transactionID == "" && transactionID != "" {
		d.transactionID = transactionID
		d.updatedAt = biztime.NowUTC()
	}
}

// CreatedEvent returns the creation event for a persisted donation.
func (d *Donation) CreatedEvent() events.DomainEvent {
	return NewCreatedEvent(d, biztime.NowUTC())
}

func (d *Donation) ID() uint {
	return d.id
}

func (d *Donation) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("donation ID already set")
	}
	d.id = id
	return nil
}

func (d *Donation) AggregateID() string {
	return strconv.FormatUint(uint64(d.id), 10)
}

func (d *Donation) OrderID() string {
	return d.orderID
}

func (d *Donation) Kind() Kind {
	return d.kind
}

func (d *Donation) IsPledge() bool {
	return d.kind == KindPledge
}

func (d *Donation) CampaignID() uint {
	return d.campaignID
}

func (d *Donation) UserID() uint {
	return d.userID
}

func (d *Donation) Amount() vo.Money {
	return d.amount
}

func (d *Donation) Gateway() string {
	return d.gateway
}

func (d *Donation) TransactionID() string {
	return d.transactionID
}

func (d *Donation) IsOffline() bool {
	return d.isOffline
}

func (d *Donation) HasReward() bool {
	return d.hasReward
}

func (d *Donation) Status() Status {
	return d.status
}

func (d *Donation) CompletedAt() *time.Time {
	return d.completedAt
}

func (d *Donation) Version() int {
	return d.version
}

func (d *Donation) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Donation) UpdatedAt() time.Time {
	return d.updatedAt
}
