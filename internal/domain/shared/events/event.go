package events

import (
	"time"
)

// EventType names a concrete domain event. Listener bindings are keyed by it.
type EventType string

const (
	DonationCreated      EventType = "donation.created"
	DonationStatusUpdate EventType = "donation.status_update"
	PledgeCreated        EventType = "pledge.created"
	PledgeStatusUpdate   EventType = "pledge.status_update"
	GoalReached          EventType = "campaign.goal_reached"
	CampaignStatusUpdate EventType = "campaign.status_update"
	CampaignPostUpdate   EventType = "campaign.post_update"
	CampaignEnded        EventType = "campaign.ended"
)

// KnownEventTypes lists every event the core emits, in a stable order.
var KnownEventTypes = []EventType{
	DonationCreated,
	DonationStatusUpdate,
	PledgeCreated,
	PledgeStatusUpdate,
	GoalReached,
	CampaignStatusUpdate,
	CampaignPostUpdate,
	CampaignEnded,
}

// DomainEvent is produced when a state transition commits and consumed once
// by the dispatcher. It is never persisted itself.
type DomainEvent interface {
	EventType() EventType
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all domain events
type BaseEvent struct {
	Type      EventType `json:"event_type"`
	Aggregate string    `json:"aggregate_id"`
	At        time.Time `json:"occurred_at"`
}

func NewBaseEvent(t EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{Type: t, Aggregate: aggregateID, At: at}
}

func (e BaseEvent) EventType() EventType {
	return e.Type
}

func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.At
}

// Recorder accumulates events raised by an aggregate until the caller
// commits and pulls them.
type Recorder struct {
	pending []DomainEvent
}

func (r *Recorder) Record(e DomainEvent) {
	r.pending = append(r.pending, e)
}

// PullEvents returns and clears the recorded events.
func (r *Recorder) PullEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
