// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/fundhive/fundhive/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

const (
	DefaultMailPollInterval  = 15 * time.Second
	DefaultReconcileInterval = 5 * time.Minute
	DefaultExpiryInterval    = 10 * time.Minute
)

// SchedulerManager runs the background batch jobs on one gocron scheduler.
// Every job runs in singleton mode so a slow batch is never overlapped.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterMailDelivery polls the mail queue and sends due jobs.
func (m *SchedulerManager) RegisterMailDelivery(job BatchJob, interval time.Duration) error {
	return m.registerBatch("mail-delivery", job, orDefault(interval, DefaultMailPollInterval), time.Minute, "notification", "mail")
}

// RegisterReconciliation polls gateways for donations stuck in pending.
func (m *SchedulerManager) RegisterReconciliation(job BatchJob, interval time.Duration) error {
	return m.registerBatch("payment-reconcile", job, orDefault(interval, DefaultReconcileInterval), 5*time.Minute, "payment", "reconcile")
}

// RegisterCampaignExpiry ends published campaigns past their end date.
func (m *SchedulerManager) RegisterCampaignExpiry(job BatchJob, interval time.Duration) error {
	return m.registerBatch("campaign-expiry", job, orDefault(interval, DefaultExpiryInterval), 5*time.Minute, "campaign", "expire")
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (m *SchedulerManager) registerBatch(name string, job BatchJob, interval, timeout time.Duration, tags ...string) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			m.runBatch(ctx, name, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(tags...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered batch job", "name", name, "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, name string, job BatchJob) {
	startTime := time.Now()

	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("batch job failed",
			"job", name,
			"processed", count,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("batch job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("batch job found nothing to do",
			"job", name,
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	// Shutdown scheduler and wait for running jobs
	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
