package campaign

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/biztime"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusEnded     Status = "ended"
)

func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusEnded
}

var ErrInvalidStatusChange = errors.New("invalid campaign status change")

var postPolicy = bluemonday.UGCPolicy()

type Campaign struct {
	id            uint
	ownerUserID   uint
	title         string
	goal          vo.Money
	raised        vo.Money
	status        Status
	goalReachedAt *time.Time
	endsAt        *time.Time
	version       int
	createdAt     time.Time
	updatedAt     time.Time

	events.Recorder
}

type NewParams struct {
	OwnerUserID uint
	Title       string
	Goal        vo.Money
	EndsAt      *time.Time
}

func NewCampaign(p NewParams) (*Campaign, error) {
	if p.OwnerUserID == 0 {
		return nil, fmt.Errorf("owner user ID is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !p.Goal.IsPositive() {
		return nil, fmt.Errorf("goal must be positive")
	}

	now := biztime.NowUTC()
	return &Campaign{
		ownerUserID: p.OwnerUserID,
		title:       strings.TrimSpace(p.Title),
		goal:        p.Goal,
		raised:      vo.ZeroMoney(p.Goal.Currency()),
		status:      StatusDraft,
		endsAt:      p.EndsAt,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

type ReconstructParams struct {
	ID            uint
	OwnerUserID   uint
	Title         string
	Goal          vo.Money
	Raised        vo.Money
	Status        Status
	GoalReachedAt *time.Time
	EndsAt        *time.Time
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func Reconstruct(p ReconstructParams) *Campaign {
	return &Campaign{
		id:            p.ID,
		ownerUserID:   p.OwnerUserID,
		title:         p.Title,
		goal:          p.Goal,
		raised:        p.Raised,
		status:        p.Status,
		goalReachedAt: p.GoalReachedAt,
		endsAt:        p.EndsAt,
		version:       p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}

// AddContribution adds a completed donation to the raised total. The first
// time the total reaches the goal a GoalReached event is recorded; the
// persisted goal-reached timestamp keeps it from ever firing again.
func (c *Campaign) AddContribution(amount vo.Money) error {
	raised, err := c.raised.Add(amount)
	if err != nil {
		return fmt.Errorf("add contribution to campaign %d: %w", c.id, err)
	}

	now := biztime.NowUTC()
	c.raised = raised
	c.updatedAt = now
	c.version++

	if c.goalReachedAt == nil && c.raised.GreaterThanOrEqual(c.goal) {
		c.goalReachedAt = &now
		c.Record(NewGoalReachedEvent(c, now))
	}
	return nil
}

// RemoveContribution subtracts a refunded donation, never below zero.
// A goal that was reached stays reached.
func (c *Campaign) RemoveContribution(amount vo.Money) error {
	raised, err := c.raised.Sub(amount)
	if err != nil {
		return fmt.Errorf("remove contribution from campaign %d: %w", c.id, err)
	}
	if raised.Amount().IsNegative() {
		raised = vo.ZeroMoney(c.raised.Currency())
	}
	c.raised = raised
	c.updatedAt = biztime.NowUTC()
	c.version++
	return nil
}

// ChangeStatus moves draft -> published. Ending goes through End.
func (c *Campaign) ChangeStatus(to Status) error {
	if to == StatusEnded {
		return c.End()
	}
	if c.status != StatusDraft || to != StatusPublished {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, c.status, to)
	}

	now := biztime.NowUTC()
	from := c.status
	c.status = to
	c.updatedAt = now
	c.version++
	c.Record(NewStatusUpdateEvent(c, from, to, now))
	return nil
}

// End closes a published campaign and records CampaignEnded.
func (c *Campaign) End() error {
	if c.status != StatusPublished {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, c.status, StatusEnded)
	}

	now := biztime.NowUTC()
	c.status = StatusEnded
	c.updatedAt = now
	c.version++
	c.Record(NewEndedEvent(c, now))
	return nil
}

// PublishUpdate records a post for backers. The body is sanitised HTML.
func (c *Campaign) PublishUpdate(title, body string) error {
	if c.status != StatusPublished {
		return fmt.Errorf("campaign %d is %s, updates require a published campaign", c.id, c.status)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("update title is required")
	}
	c.Record(NewPostUpdateEvent(c, title, postPolicy.Sanitize(body), biztime.NowUTC()))
	return nil
}

// IsExpired reports whether a published campaign is past its end date.
func (c *Campaign) IsExpired(now time.Time) bool {
	return c.status == StatusPublished && c.endsAt != nil && !now.Before(*c.endsAt)
}

func (c *Campaign) ID() uint {
	return c.id
}

func (c *Campaign) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("campaign ID already set")
	}
	c.id = id
	return nil
}

func (c *Campaign) AggregateID() string {
	return strconv.FormatUint(uint64(c.id), 10)
}

func (c *Campaign) OwnerUserID() uint {
	return c.ownerUserID
}

func (c *Campaign) Title() string {
	return c.title
}

func (c *Campaign) Goal() vo.Money {
	return c.goal
}

func (c *Campaign) Raised() vo.Money {
	return c.raised
}

func (c *Campaign) Status() Status {
	return c.status
}

func (c *Campaign) GoalReachedAt() *time.Time {
	return c.goalReachedAt
}

func (c *Campaign) EndsAt() *time.Time {
	return c.endsAt
}

func (c *Campaign) Version() int {
	return c.version
}

func (c *Campaign) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Campaign) UpdatedAt() time.Time {
	return c.updatedAt
}
