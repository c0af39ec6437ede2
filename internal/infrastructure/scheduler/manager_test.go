package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/shared/logger"
)

type countingJob struct {
	runs int32
	err  error
}

func (j *countingJob) Execute(ctx context.Context) (int, error) {
	atomic.AddInt32(&j.runs, 1)
	return 1, j.err
}

func TestSchedulerManager_RunsRegisteredJobs(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)

	mail := &countingJob{}
	reconcile := &countingJob{err: errors.New("gateway down")}
	expiry := &countingJob{}
	require.NoError(t, m.RegisterMailDelivery(mail, 20*time.Millisecond))
	require.NoError(t, m.RegisterReconciliation(reconcile, time.Hour))
	require.NoError(t, m.RegisterCampaignExpiry(expiry, time.Hour))
	assert.Len(t, m.Jobs(), 3)

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&mail.runs) >= 2 &&
			atomic.LoadInt32(&reconcile.runs) >= 1 &&
			atomic.LoadInt32(&expiry.runs) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	assert.NoError(t, m.Stop())
}
