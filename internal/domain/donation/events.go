package donation

import (
	"fmt"
	"time"

	"github.com/fundhive/fundhive/internal/domain/activity"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

// Snapshot is the read-only view of a donation carried by its events.
type Snapshot struct {
	DonationID    uint
	OrderID       string
	Kind          Kind
	CampaignID    uint
	UserID        uint
	Amount        vo.Money
	Gateway       string
	TransactionID string
	IsOffline     bool
}

func snapshotOf(d *Donation) Snapshot {
	return Snapshot{
		DonationID:    d.id,
		OrderID:       d.orderID,
		Kind:          d.kind,
		CampaignID:    d.campaignID,
		UserID:        d.userID,
		Amount:        d.amount,
		Gateway:       d.gateway,
		TransactionID: d.transactionID,
		IsOffline:     d.isOffline,
	}
}

func (s Snapshot) objectType() activity.ObjectType {
	if s.Kind == KindPledge {
		return activity.ObjectPledge
	}
	return activity.ObjectDonation
}

// CreatedEvent is DonationCreated or PledgeCreated depending on Kind.
type CreatedEvent struct {
	events.BaseEvent
	Snapshot
}

func NewCreatedEvent(d *Donation, at time.Time) *CreatedEvent {
	t := events.DonationCreated
	if d.kind == KindPledge {
		t = events.PledgeCreated
	}
	return &CreatedEvent{
		BaseEvent: events.NewBaseEvent(t, d.AggregateID(), at),
		Snapshot:  snapshotOf(d),
	}
}

func (e *CreatedEvent) Activity() *activity.Record {
	action := activity.ActionDonationCreated
	if e.Kind == KindPledge {
		action = activity.ActionPledgeCreated
	}
	return &activity.Record{
		Action:     action,
		ObjectType: e.objectType(),
		ObjectID:   e.DonationID,
		CampaignID: e.CampaignID,
		UserID:     e.UserID,
		Message:    fmt.Sprintf("%s %s of %s via %s", e.Kind, e.OrderID, e.Amount, e.Gateway),
		OccurredAt: e.OccurredAt(),
	}
}

// StatusUpdateEvent is DonationStatusUpdate or PledgeStatusUpdate. Listeners
// compare OldStatus and NewStatus to tell which transition happened.
type StatusUpdateEvent struct {
	events.BaseEvent
	Snapshot
	OldStatus Status
	NewStatus Status
}

func NewStatusUpdateEvent(d *Donation, from, to Status, at time.Time) *StatusUpdateEvent {
	t := events.DonationStatusUpdate
	if d.kind == KindPledge {
		t = events.PledgeStatusUpdate
	}
	return &StatusUpdateEvent{
		BaseEvent: events.NewBaseEvent(t, d.AggregateID(), at),
		Snapshot:  snapshotOf(d),
		OldStatus: from,
		NewStatus: to,
	}
}

// Became reports whether this update moved into status from another one.
func (e *StatusUpdateEvent) Became(status Status) bool {
	return e.NewStatus == status && e.OldStatus != status
}

func (e *StatusUpdateEvent) Activity() *activity.Record {
	action := activity.ActionDonationStatus
	if e.Kind == KindPledge {
		action = activity.ActionPledgeStatus
	}
	return &activity.Record{
		Action:     action,
		ObjectType: e.objectType(),
		ObjectID:   e.DonationID,
		CampaignID: e.CampaignID,
		UserID:     e.UserID,
		Message:    fmt.Sprintf("%s %s changed from %s to %s", e.Kind, e.OrderID, e.OldStatus, e.NewStatus),
		OccurredAt: e.OccurredAt(),
	}
}
