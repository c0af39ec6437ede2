package notification

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fundhive/fundhive/internal/domain/notification"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	DefaultCoalesceWindow = 10 * time.Minute

	defaultEnqueueTries    = 4
	defaultEnqueueInterval = 200 * time.Millisecond
)

// Scheduler enqueues mail jobs for the delivery worker. A job whose group
// was already scheduled inside the coalescing window is dropped.
type Scheduler struct {
	jobs            notification.MailJobRepository
	gate            GroupGate
	window          time.Duration
	enqueueTries    uint
	enqueueInterval time.Duration
	logger          logger.Interface
}

type SchedulerOption func(*Scheduler)

// WithEnqueueRetry sets how often a failed enqueue is retried.
func WithEnqueueRetry(tries uint, initial time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.enqueueTries = tries
		s.enqueueInterval = initial
	}
}

func NewScheduler(
	jobs notification.MailJobRepository,
	gate GroupGate,
	window time.Duration,
	logger logger.Interface,
	opts ...SchedulerOption,
) *Scheduler {
	if window <= 0 {
		window = DefaultCoalesceWindow
	}
	s := &Scheduler{
		jobs:            jobs,
		gate:            gate,
		window:          window,
		enqueueTries:    defaultEnqueueTries,
		enqueueInterval: defaultEnqueueInterval,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule enqueues job unless its group is coalesced. Enqueue failures are
// retried with exponential backoff and surface as a scheduling_error.
func (s *Scheduler) Schedule(ctx context.Context, job *notification.MailJob) error {
	acquired, err := s.gate.TryAcquire(ctx, job.Group(), s.window)
	if err != nil {
		// The unique queued group in storage still coalesces.
		s.logger.Warnw("group gate unavailable, relying on storage", "group", job.Group(), "error", err)
		acquired = true
	}
	if !acquired {
		s.logger.Debugw("mail job coalesced", "group", job.Group(), "mail_type", job.MailType())
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.enqueueInterval

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		if err := s.jobs.Create(ctx, job); err != nil {
			if errors.Is(err, notification.ErrGroupQueued) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.enqueueTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warnw("mail job enqueue failed, retrying", "group", job.Group(), "retry_in", next, "error", err)
		}),
	)
	if errors.Is(err, notification.ErrGroupQueued) {
		s.logger.Debugw("mail job coalesced by queued group", "group", job.Group(), "mail_type", job.MailType())
		return nil
	}
	if err != nil {
		s.logger.Errorw("failed to enqueue mail job", "group", job.Group(), "mail_type", job.MailType(), "error", err)
		// Free the group so a retried Schedule is not coalesced away.
		if relErr := s.gate.Release(context.WithoutCancel(ctx), job.Group()); relErr != nil {
			s.logger.Warnw("failed to release mail group", "group", job.Group(), "error", relErr)
		}
		return apperrors.NewSchedulingError("failed to enqueue mail job", err)
	}

	s.logger.Infow("mail job scheduled",
		"job_id", job.ID(),
		"mail_type", job.MailType(),
		"recipient_user_id", job.RecipientUserID(),
		"group", job.Group(),
	)
	return nil
}
