package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/biztime"
)

// AdminRecipient addresses a mail to the platform administrator instead of a user.
const AdminRecipient uint = 0

// MailJob is a deferred notification. Jobs sharing a Group within the
// coalescing window collapse into the first one.
type MailJob struct {
	id              string
	mailType        vo.MailType
	recipientUserID uint
	payload         map[string]any
	group           string
	status          vo.JobStatus
	attempts        int
	nextAttemptAt   time.Time
	lastError       string
	createdAt       time.Time
	updatedAt       time.Time
	deliveredAt     *time.Time
}

type NewMailJobParams struct {
	MailType        vo.MailType
	RecipientUserID uint
	Payload         map[string]any
	Group           string
	NotBefore       time.Time
}

func NewMailJob(p NewMailJobParams) (*MailJob, error) {
	if !p.MailType.IsValid() {
		return nil, fmt.Errorf("invalid mail type %q", p.MailType)
	}
	if p.Group == "" {
		return nil, fmt.Errorf("group key is required")
	}

	now := biztime.NowUTC()
	next := p.NotBefore
	if next.IsZero() {
		next = now
	}
	payload := p.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return &MailJob{
		id:              uuid.NewString(),
		mailType:        p.MailType,
		recipientUserID: p.RecipientUserID,
		payload:         payload,
		group:           p.Group,
		status:          vo.JobStatusQueued,
		nextAttemptAt:   next.UTC(),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

type ReconstructMailJobParams struct {
	ID              string
	MailType        vo.MailType
	RecipientUserID uint
	Payload         map[string]any
	Group           string
	Status          vo.JobStatus
	Attempts        int
	NextAttemptAt   time.Time
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeliveredAt     *time.Time
}

func ReconstructMailJob(p ReconstructMailJobParams) *MailJob {
	return &MailJob{
		id:              p.ID,
		mailType:        p.MailType,
		recipientUserID: p.RecipientUserID,
		payload:         p.Payload,
		group:           p.Group,
		status:          p.Status,
		attempts:        p.Attempts,
		nextAttemptAt:   p.NextAttemptAt,
		lastError:       p.LastError,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
		deliveredAt:     p.DeliveredAt,
	}
}

func (j *MailJob) MarkDelivered(now time.Time) error {
	if j.status != vo.JobStatusQueued {
		return fmt.Errorf("cannot deliver mail job %s in status %s", j.id, j.status)
	}
	j.attempts++
	j.status = vo.JobStatusDelivered
	j.deliveredAt = &now
	j.lastError = ""
	j.updatedAt = now
	return nil
}

// MarkFailed records a failed attempt. Once maxAttempts is reached the job
// is dead-lettered, otherwise it is rescheduled for retryAt.
func (j *MailJob) MarkFailed(cause error, retryAt time.Time, maxAttempts int) error {
	if j.status != vo.JobStatusQueued {
		return fmt.Errorf("cannot fail mail job %s in status %s", j.id, j.status)
	}
	j.attempts++
	if cause != nil {
		j.lastError = cause.Error()
	}
	j.updatedAt = biztime.NowUTC()
	if j.attempts >= maxAttempts {
		j.status = vo.JobStatusDead
		return nil
	}
	j.nextAttemptAt = retryAt.UTC()
	return nil
}

// ActiveGroup is the group key while the job is queued and nil afterwards,
// so storage can enforce one queued job per group.
func (j *MailJob) ActiveGroup() *string {
	if j.status != vo.JobStatusQueued {
		return nil
	}
	g := j.group
	return &g
}

func (j *MailJob) ID() string {
	return j.id
}

func (j *MailJob) MailType() vo.MailType {
	return j.mailType
}

func (j *MailJob) RecipientUserID() uint {
	return j.recipientUserID
}

func (j *MailJob) IsForAdmin() bool {
	return j.recipientUserID == AdminRecipient
}

func (j *MailJob) Payload() map[string]any {
	return j.payload
}

func (j *MailJob) Group() string {
	return j.group
}

func (j *MailJob) Status() vo.JobStatus {
	return j.status
}

func (j *MailJob) Attempts() int {
	return j.attempts
}

func (j *MailJob) NextAttemptAt() time.Time {
	return j.nextAttemptAt
}

func (j *MailJob) LastError() string {
	return j.lastError
}

func (j *MailJob) CreatedAt() time.Time {
	return j.createdAt
}

func (j *MailJob) UpdatedAt() time.Time {
	return j.updatedAt
}

func (j *MailJob) DeliveredAt() *time.Time {
	return j.deliveredAt
}
