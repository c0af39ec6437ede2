package notification_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnotification "github.com/fundhive/fundhive/internal/application/notification"
	"github.com/fundhive/fundhive/internal/application/notification/testutil"
	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/config"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

func newJob(t *testing.T, mailType vo.MailType, userID uint, group string) *notification.MailJob {
	t.Helper()
	job, err := notification.NewMailJob(notification.NewMailJobParams{
		MailType:        mailType,
		RecipientUserID: userID,
		Payload: map[string]any{
			"order_id":       "D-abc",
			"amount":         "25.00 USD",
			"campaign_title": "Community Garden",
		},
		Group: group,
	})
	require.NoError(t, err)
	return job
}

func newRenderer(t *testing.T) *appnotification.Renderer {
	t.Helper()
	templates, err := appnotification.DefaultTemplates()
	require.NoError(t, err)
	return appnotification.NewRenderer(templates...)
}

func TestScheduler_CoalescesWithinWindow(t *testing.T) {
	jobs := testutil.NewMockMailJobRepository()
	gate := testutil.NewMockGroupGate()
	now := time.Now()
	gate.Now = func() time.Time { return now }
	s := appnotification.NewScheduler(jobs, gate, 10*time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypeOfflinePledge, 7, "pledge_created:1")))
	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypePledgeCreated, 7, "pledge_created:1")))

	all := jobs.All()
	require.Len(t, all, 1)
	assert.Equal(t, vo.MailTypeOfflinePledge, all[0].MailType())

	now = now.Add(11 * time.Minute)
	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypeDonorReceipt, 7, "donor_receipt:1")))
	assert.Len(t, jobs.All(), 2)
}

func TestScheduler_QueuedGroupIsCoalesced(t *testing.T) {
	jobs := testutil.NewMockMailJobRepository()
	gate := testutil.NewMockGroupGate()
	gate.Err = stderrors.New("redis down")
	s := appnotification.NewScheduler(jobs, gate, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypeGoalReached, 3, "goal_reached:9:3")))
	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypeGoalReached, 3, "goal_reached:9:3")))

	assert.Len(t, jobs.All(), 1)
	assert.Equal(t, 2, jobs.CreateCalls)
}

func TestScheduler_RetriesEnqueue(t *testing.T) {
	jobs := testutil.NewMockMailJobRepository()
	jobs.CreateErrors = []error{testutil.ErrStorageDown}
	s := appnotification.NewScheduler(jobs, testutil.NewMockGroupGate(), time.Minute, logger.NewNopLogger(),
		appnotification.WithEnqueueRetry(3, time.Millisecond))

	require.NoError(t, s.Schedule(context.Background(), newJob(t, vo.MailTypeDonorReceipt, 1, "donor_receipt:5")))

	assert.Equal(t, 2, jobs.CreateCalls)
	assert.Len(t, jobs.All(), 1)
}

func TestScheduler_EnqueueFailureIsSchedulingError(t *testing.T) {
	jobs := testutil.NewMockMailJobRepository()
	jobs.CreateErrors = []error{testutil.ErrStorageDown, testutil.ErrStorageDown, testutil.ErrStorageDown}
	s := appnotification.NewScheduler(jobs, testutil.NewMockGroupGate(), time.Minute, logger.NewNopLogger(),
		appnotification.WithEnqueueRetry(2, time.Millisecond))

	err := s.Schedule(context.Background(), newJob(t, vo.MailTypeDonorReceipt, 1, "donor_receipt:6"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeScheduling))
	assert.ErrorIs(t, err, testutil.ErrStorageDown)
	assert.Equal(t, 2, jobs.CreateCalls)
	assert.Empty(t, jobs.All())
}

func TestScheduler_FailedEnqueueCanBeRetried(t *testing.T) {
	jobs := testutil.NewMockMailJobRepository()
	jobs.CreateErrors = []error{testutil.ErrStorageDown, testutil.ErrStorageDown}
	s := appnotification.NewScheduler(jobs, testutil.NewMockGroupGate(), 10*time.Minute, logger.NewNopLogger(),
		appnotification.WithEnqueueRetry(2, time.Millisecond))
	ctx := context.Background()

	err := s.Schedule(ctx, newJob(t, vo.MailTypeDonorReceipt, 1, "donor_receipt:8"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeScheduling))

	require.NoError(t, s.Schedule(ctx, newJob(t, vo.MailTypeDonorReceipt, 1, "donor_receipt:8")))
	assert.Equal(t, 3, jobs.CreateCalls)
	assert.Len(t, jobs.All(), 1)
}

type deliveryFixture struct {
	jobs      *testutil.MockMailJobRepository
	transport *testutil.MockTransport
	clock     *biztime.FixedClock
	worker    *appnotification.MailDeliveryJob
}

func newDeliveryFixture(t *testing.T, adminAddress string) *deliveryFixture {
	t.Helper()
	f := &deliveryFixture{
		jobs:      testutil.NewMockMailJobRepository(),
		transport: &testutil.MockTransport{},
		clock:     biztime.NewFixedClock(time.Now().Add(time.Hour)),
	}
	directory := testutil.MockDirectory{
		7: {UserID: 7, Email: "ada@example.com", Name: "Ada"},
	}
	cfg := config.NotificationConfig{
		BatchSize:    10,
		MaxAttempts:  3,
		RetryInitial: time.Minute,
		RetryMax:     time.Hour,
	}
	f.worker = appnotification.NewMailDeliveryJob(f.jobs, directory, newRenderer(t), f.transport, f.clock, cfg, adminAddress, logger.NewNopLogger())
	return f
}

func TestMailDeliveryJob_Delivers(t *testing.T) {
	f := newDeliveryFixture(t, "admin@example.com")
	ctx := context.Background()
	require.NoError(t, f.jobs.Create(ctx, newJob(t, vo.MailTypeDonorReceipt, 7, "donor_receipt:1")))
	require.NoError(t, f.jobs.Create(ctx, newJob(t, vo.MailTypeDonationAdminNotice, notification.AdminRecipient, "donation_admin_notice:1")))

	n, err := f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sent := f.transport.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "ada@example.com", sent[0].To)
	assert.Equal(t, "Thank you for supporting Community Garden", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "<strong>D-abc</strong>")
	assert.Contains(t, sent[0].Text, "Hi Ada,")
	assert.Equal(t, "admin@example.com", sent[1].To)

	for _, job := range f.jobs.All() {
		assert.Equal(t, vo.JobStatusDelivered, job.Status())
		assert.Nil(t, job.ActiveGroup())
	}

	n, err = f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMailDeliveryJob_RetriesThenDeadLetters(t *testing.T) {
	f := newDeliveryFixture(t, "admin@example.com")
	f.transport.Fail = stderrors.New("smtp 451")
	ctx := context.Background()
	job := newJob(t, vo.MailTypeDonorReceipt, 7, "donor_receipt:2")
	require.NoError(t, f.jobs.Create(ctx, job))

	n, err := f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, vo.JobStatusQueued, job.Status())
	assert.Equal(t, 1, job.Attempts())
	assert.Equal(t, f.clock.Now().Add(time.Minute), job.NextAttemptAt())
	assert.Equal(t, "smtp 451", job.LastError())

	// Not due yet.
	n, err = f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, job.Attempts())

	f.clock.Advance(time.Minute)
	_, err = f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Attempts())
	assert.Equal(t, f.clock.Now().Add(2*time.Minute), job.NextAttemptAt())

	f.clock.Advance(2 * time.Minute)
	_, err = f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, job.Attempts())
	assert.Equal(t, vo.JobStatusDead, job.Status())

	f.clock.Advance(time.Hour)
	_, err = f.worker.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, job.Attempts())
}

func TestMailDeliveryJob_MissingAdminAddressFails(t *testing.T) {
	f := newDeliveryFixture(t, "")
	ctx := context.Background()
	job := newJob(t, vo.MailTypeGoalReached, notification.AdminRecipient, "goal_reached:1:0")
	require.NoError(t, f.jobs.Create(ctx, job))

	_, err := f.worker.Execute(ctx)
	require.NoError(t, err)

	assert.Empty(t, f.transport.Sent())
	assert.Contains(t, job.LastError(), "admin mail address")
}

func TestMailDeliveryJob_UnknownRecipientFails(t *testing.T) {
	f := newDeliveryFixture(t, "admin@example.com")
	ctx := context.Background()
	job := newJob(t, vo.MailTypeDonorReceipt, 99, "donor_receipt:3")
	require.NoError(t, f.jobs.Create(ctx, job))

	_, err := f.worker.Execute(ctx)
	require.NoError(t, err)

	assert.Empty(t, f.transport.Sent())
	assert.Equal(t, 1, job.Attempts())
	assert.Contains(t, job.LastError(), "failed to resolve recipient 99")
}

func TestRenderer_SanitisesHTML(t *testing.T) {
	r := newRenderer(t)

	subject, html, text, err := r.Render(vo.MailTypeCampaignPostUpdate, map[string]any{
		"campaign_title": "Community Garden",
		"post_title":     "Seeds arrived",
		"post_body":      "We planted **40** beds.<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Community Garden: Seeds arrived", subject)
	assert.Contains(t, html, "<h2>Seeds arrived</h2>")
	assert.Contains(t, html, "<strong>40</strong>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, text, "## Seeds arrived")
}

func TestRenderer_CampaignEndedBranches(t *testing.T) {
	r := newRenderer(t)

	_, _, reached, err := r.Render(vo.MailTypeCampaignEnded, map[string]any{"campaign_title": "X", "goal_reached": true})
	require.NoError(t, err)
	assert.Contains(t, reached, "The goal was reached.")

	_, _, missed, err := r.Render(vo.MailTypeCampaignEnded, map[string]any{"campaign_title": "X", "goal_reached": false})
	require.NoError(t, err)
	assert.Contains(t, missed, "The goal was not reached.")
}

func TestDefaultTemplates_CoverEveryMailType(t *testing.T) {
	templates, err := appnotification.DefaultTemplates()
	require.NoError(t, err)

	covered := make(map[vo.MailType]bool)
	for _, tmpl := range templates {
		covered[tmpl.MailType()] = true
	}
	for _, mt := range vo.AllMailTypes() {
		assert.True(t, covered[mt], "missing template for %s", mt)
	}
}
