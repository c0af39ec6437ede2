package campaign

import (
	"fmt"
	"time"

	"github.com/fundhive/fundhive/internal/domain/activity"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

// Snapshot is the campaign state captured when an event was raised.
type Snapshot struct {
	CampaignID  uint
	OwnerUserID uint
	Title       string
	Goal        vo.Money
	Raised      vo.Money
}

func snapshotOf(c *Campaign) Snapshot {
	return Snapshot{
		CampaignID:  c.id,
		OwnerUserID: c.ownerUserID,
		Title:       c.title,
		Goal:        c.goal,
		Raised:      c.raised,
	}
}

func (s Snapshot) record(action activity.Action, msg string, at time.Time) *activity.Record {
	return &activity.Record{
		Action:     action,
		ObjectType: activity.ObjectCampaign,
		ObjectID:   s.CampaignID,
		CampaignID: s.CampaignID,
		UserID:     s.OwnerUserID,
		Message:    msg,
		OccurredAt: at,
	}
}

type GoalReachedEvent struct {
	events.BaseEvent
	Snapshot
}

func NewGoalReachedEvent(c *Campaign, at time.Time) *GoalReachedEvent {
	return &GoalReachedEvent{
		BaseEvent: events.NewBaseEvent(events.GoalReached, c.AggregateID(), at),
		Snapshot:  snapshotOf(c),
	}
}

func (e *GoalReachedEvent) Activity() *activity.Record {
	return e.record(activity.ActionGoalReached,
		fmt.Sprintf("%q reached its goal of %s (raised %s)", e.Title, e.Goal, e.Raised), e.OccurredAt())
}

type StatusUpdateEvent struct {
	events.BaseEvent
	Snapshot
	OldStatus Status
	NewStatus Status
}

func NewStatusUpdateEvent(c *Campaign, from, to Status, at time.Time) *StatusUpdateEvent {
	return &StatusUpdateEvent{
		BaseEvent: events.NewBaseEvent(events.CampaignStatusUpdate, c.AggregateID(), at),
		Snapshot:  snapshotOf(c),
		OldStatus: from,
		NewStatus: to,
	}
}

func (e *StatusUpdateEvent) Activity() *activity.Record {
	return e.record(activity.ActionCampaignStatus,
		fmt.Sprintf("%q changed from %s to %s", e.Title, e.OldStatus, e.NewStatus), e.OccurredAt())
}

type PostUpdateEvent struct {
	events.BaseEvent
	Snapshot
	PostTitle string
	PostBody  string
}

func NewPostUpdateEvent(c *Campaign, title, body string, at time.Time) *PostUpdateEvent {
	return &PostUpdateEvent{
		BaseEvent: events.NewBaseEvent(events.CampaignPostUpdate, c.AggregateID(), at),
		Snapshot:  snapshotOf(c),
		PostTitle: title,
		PostBody:  body,
	}
}

func (e *PostUpdateEvent) Activity() *activity.Record {
	return e.record(activity.ActionCampaignPost,
		fmt.Sprintf("%q posted an update: %s", e.Title, e.PostTitle), e.OccurredAt())
}

type EndedEvent struct {
	events.BaseEvent
	Snapshot
	GoalReached bool
}

func NewEndedEvent(c *Campaign, at time.Time) *EndedEvent {
	return &EndedEvent{
		BaseEvent:   events.NewBaseEvent(events.CampaignEnded, c.AggregateID(), at),
		Snapshot:    snapshotOf(c),
		GoalReached: c.goalReachedAt != nil,
	}
}

func (e *EndedEvent) Activity() *activity.Record {
	return e.record(activity.ActionCampaignEnded,
		fmt.Sprintf("%q ended with %s raised of %s", e.Title, e.Raised, e.Goal), e.OccurredAt())
}
