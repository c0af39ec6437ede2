package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/config"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	defaultDeliveryBatch = 50
	defaultMaxAttempts   = 5
	defaultRetryInitial  = time.Minute
	defaultRetryMax      = 6 * time.Hour
)

// MailDeliveryJob sends due mail jobs. Failed sends are retried with
// exponential backoff until the attempt limit, then dead-lettered.
type MailDeliveryJob struct {
	jobs         notification.MailJobRepository
	directory    RecipientDirectory
	renderer     *Renderer
	transport    MailTransport
	clock        biztime.Clock
	adminAddress string
	batch        int
	maxAttempts  int
	retryInitial time.Duration
	retryMax     time.Duration
	logger       logger.Interface
}

func NewMailDeliveryJob(
	jobs notification.MailJobRepository,
	directory RecipientDirectory,
	renderer *Renderer,
	transport MailTransport,
	clock biztime.Clock,
	cfg config.NotificationConfig,
	adminAddress string,
	logger logger.Interface,
) *MailDeliveryJob {
	j := &MailDeliveryJob{
		jobs:         jobs,
		directory:    directory,
		renderer:     renderer,
		transport:    transport,
		clock:        clock,
		adminAddress: adminAddress,
		batch:        cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		retryInitial: cfg.RetryInitial,
		retryMax:     cfg.RetryMax,
		logger:       logger,
	}
	if j.batch <= 0 {
		j.batch = defaultDeliveryBatch
	}
	if j.maxAttempts <= 0 {
		j.maxAttempts = defaultMaxAttempts
	}
	if j.retryInitial <= 0 {
		j.retryInitial = defaultRetryInitial
	}
	if j.retryMax <= 0 {
		j.retryMax = defaultRetryMax
	}
	return j
}

// Execute delivers one batch of due jobs and returns how many were sent.
func (j *MailDeliveryJob) Execute(ctx context.Context) (int, error) {
	due, err := j.jobs.ListDue(ctx, j.clock.Now(), j.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list due mail jobs: %w", err)
	}

	delivered := 0
	for _, job := range due {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if j.deliver(ctx, job) {
			delivered++
		}
	}
	return delivered, nil
}

func (j *MailDeliveryJob) deliver(ctx context.Context, job *notification.MailJob) bool {
	sendErr := j.send(ctx, job)
	now := j.clock.Now()

	if sendErr == nil {
		if err := job.MarkDelivered(now); err != nil {
			j.logger.Errorw("failed to mark mail job delivered", "job_id", job.ID(), "error", err)
			return false
		}
		if err := j.jobs.Update(ctx, job); err != nil {
			j.logger.Errorw("failed to persist delivered mail job", "job_id", job.ID(), "error", err)
			return false
		}
		j.logger.Infow("mail delivered", "job_id", job.ID(), "mail_type", job.MailType())
		return true
	}

	retryAt := now.Add(j.retryDelay(job.Attempts() + 1))
	if err := job.MarkFailed(sendErr, retryAt, j.maxAttempts); err != nil {
		j.logger.Errorw("failed to mark mail job failed", "job_id", job.ID(), "error", err)
		return false
	}
	if err := j.jobs.Update(ctx, job); err != nil {
		j.logger.Errorw("failed to persist failed mail job", "job_id", job.ID(), "error", err)
		return false
	}

	if job.Status() == vo.JobStatusDead {
		j.logger.Errorw("mail job dead-lettered",
			"job_id", job.ID(),
			"mail_type", job.MailType(),
			"attempts", job.Attempts(),
			"error", sendErr,
		)
	} else {
		j.logger.Warnw("mail delivery failed, will retry",
			"job_id", job.ID(),
			"attempts", job.Attempts(),
			"retry_at", retryAt,
			"error", sendErr,
		)
	}
	return false
}

func (j *MailDeliveryJob) send(ctx context.Context, job *notification.MailJob) error {
	recipient, err := j.recipientFor(ctx, job)
	if err != nil {
		return err
	}

	data := make(map[string]any, len(job.Payload())+2)
	for k, v := range job.Payload() {
		data[k] = v
	}
	data["recipient_name"] = recipient.Name
	data["recipient_email"] = recipient.Email

	subject, html, text, err := j.renderer.Render(job.MailType(), data)
	if err != nil {
		return err
	}

	return j.transport.Send(ctx, Message{
		JobID:    job.ID(),
		MailType: job.MailType(),
		To:       recipient.Email,
		ToName:   recipient.Name,
		Subject:  subject,
		HTML:     html,
		Text:     text,
	})
}

func (j *MailDeliveryJob) recipientFor(ctx context.Context, job *notification.MailJob) (Recipient, error) {
	if job.IsForAdmin() {
		if j.adminAddress == "" {
			return Recipient{}, fmt.Errorf("admin mail address is not configured")
		}
		return Recipient{Email: j.adminAddress, Name: "Administrator"}, nil
	}
	r, err := j.directory.Lookup(ctx, job.RecipientUserID())
	if err != nil {
		return Recipient{}, fmt.Errorf("failed to resolve recipient %d: %w", job.RecipientUserID(), err)
	}
	if r.Email == "" {
		return Recipient{}, fmt.Errorf("recipient %d has no mail address", job.RecipientUserID())
	}
	return r, nil
}

// retryDelay is the un-jittered exponential delay before attempt n.
func (j *MailDeliveryJob) retryDelay(attempt int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval: j.retryInitial,
		Multiplier:      2,
		MaxInterval:     j.retryMax,
	}
	b.Reset()
	delay := j.retryInitial
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
