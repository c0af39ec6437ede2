// Package activity models the audit timeline entries derived from domain events.
package activity

import (
	"context"
	"time"
)

// Action is what happened, as shown on a timeline.
type Action string

const (
	ActionDonationCreated Action = "donation_created"
	ActionDonationStatus  Action = "donation_status_changed"
	ActionPledgeCreated   Action = "pledge_created"
	ActionPledgeStatus    Action = "pledge_status_changed"
	ActionGoalReached     Action = "goal_reached"
	ActionCampaignStatus  Action = "campaign_status_changed"
	ActionCampaignPost    Action = "campaign_post_published"
	ActionCampaignEnded   Action = "campaign_ended"
)

// ObjectType is the kind of entity an entry is about.
type ObjectType string

const (
	ObjectDonation ObjectType = "donation"
	ObjectPledge   ObjectType = "pledge"
	ObjectCampaign ObjectType = "campaign"
)

// Record is one audit timeline entry.
type Record struct {
	ID         uint
	Action     Action
	ObjectType ObjectType
	ObjectID   uint
	CampaignID uint
	UserID     uint
	Message    string
	OccurredAt time.Time
}

// Source is implemented by events that can describe themselves on a
// timeline. Activity may return nil when there is nothing to record.
type Source interface {
	Activity() *Record
}

type Repository interface {
	Create(ctx context.Context, record *Record) error
	ListByCampaign(ctx context.Context, campaignID uint, limit int) ([]*Record, error)
	ListByObject(ctx context.Context, objectType ObjectType, objectID uint) ([]*Record, error)
}
