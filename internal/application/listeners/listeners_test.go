package listeners

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnotification "github.com/fundhive/fundhive/internal/application/notification"
	notifytest "github.com/fundhive/fundhive/internal/application/notification/testutil"
	"github.com/fundhive/fundhive/internal/application/payment/testutil"
	"github.com/fundhive/fundhive/internal/domain/activity"
	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	"github.com/fundhive/fundhive/internal/domain/notification"
	nvo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type fixture struct {
	activity   *testutil.MockActivityRepository
	jobs       *notifytest.MockMailJobRepository
	donations  *testutil.MockDonationRepository
	campaign   *campaign.Campaign
	dispatcher *events.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	f := &fixture{
		activity:  testutil.NewMockActivityRepository(),
		jobs:      notifytest.NewMockMailJobRepository(),
		donations: testutil.NewMockDonationRepository(),
	}
	campaigns := testutil.NewMockCampaignRepository()

	c, err := campaign.NewCampaign(campaign.NewParams{OwnerUserID: 7, Title: "Community Garden", Goal: vo.MustMoney("100", "USD")})
	require.NoError(t, err)
	require.NoError(t, c.ChangeStatus(campaign.StatusPublished))
	c.PullEvents()
	require.NoError(t, campaigns.Create(context.Background(), c))
	f.campaign = c

	scheduler := appnotification.NewScheduler(f.jobs, notifytest.NewMockGroupGate(), time.Minute, log)
	table := NewBindingTable(NewActivityListener(f.activity), NewMailListeners(scheduler, campaigns, f.donations, log))
	f.dispatcher = events.NewDispatcher(table, log)
	return f
}

func (f *fixture) donation(id uint, kind donation.Kind, userID uint, status donation.Status, offline bool) *donation.Donation {
	now := time.Now().UTC()
	return donation.Reconstruct(donation.ReconstructParams{
		ID:         id,
		OrderID:    fmt.Sprintf("D-%04d", id),
		Kind:       kind,
		CampaignID: f.campaign.ID(),
		UserID:     userID,
		Amount:     vo.MustMoney("25", "USD"),
		Gateway:    "stripe",
		IsOffline:  offline,
		Status:     status,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func mailTypes(jobs []*notification.MailJob) []nvo.MailType {
	out := make([]nvo.MailType, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.MailType())
	}
	return out
}

func TestOfflinePledgeCoalescesWithPledgeCreated(t *testing.T) {
	f := newFixture(t)
	d := f.donation(1, donation.KindPledge, 42, donation.StatusPending, true)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), donation.NewCreatedEvent(d, time.Now())))

	jobs := f.jobs.All()
	assert.Equal(t, []nvo.MailType{nvo.MailTypeDonationAdminNotice, nvo.MailTypeOfflinePledge}, mailTypes(jobs))
	assert.Equal(t, notification.AdminRecipient, jobs[0].RecipientUserID())
	assert.Equal(t, uint(42), jobs[1].RecipientUserID())
	assert.Equal(t, "Community Garden", jobs[1].Payload()["campaign_title"])

	require.Len(t, f.activity.Records(), 1)
	assert.Equal(t, activity.ActionPledgeCreated, f.activity.Records()[0].Action)
}

func TestOnlinePledgeGetsPledgeCreatedMail(t *testing.T) {
	f := newFixture(t)
	d := f.donation(2, donation.KindPledge, 42, donation.StatusPending, false)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), donation.NewCreatedEvent(d, time.Now())))

	assert.Equal(t, []nvo.MailType{nvo.MailTypeDonationAdminNotice, nvo.MailTypePledgeCreated}, mailTypes(f.jobs.All()))
}

func TestDonorReceiptOnlyWhenCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.donation(3, donation.KindDonation, 42, donation.StatusCompleted, false)

	require.NoError(t, f.dispatcher.Dispatch(ctx, donation.NewStatusUpdateEvent(d, donation.StatusPending, donation.StatusFailed, time.Now())))
	assert.Empty(t, f.jobs.All())

	require.NoError(t, f.dispatcher.Dispatch(ctx, donation.NewStatusUpdateEvent(d, donation.StatusPending, donation.StatusCompleted, time.Now())))
	jobs := f.jobs.All()
	require.Len(t, jobs, 1)
	assert.Equal(t, nvo.MailTypeDonorReceipt, jobs[0].MailType())
	assert.Equal(t, "25.00 USD", jobs[0].Payload()["amount"])

	assert.Len(t, f.activity.Records(), 2)
}

func TestGuestDonationSkipsReceipt(t *testing.T) {
	f := newFixture(t)
	d := f.donation(4, donation.KindDonation, 0, donation.StatusCompleted, false)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), donation.NewStatusUpdateEvent(d, donation.StatusPending, donation.StatusCompleted, time.Now())))

	assert.Empty(t, f.jobs.All())
	assert.Len(t, f.activity.Records(), 1)
}

func TestPledgeCancelledMailsBacker(t *testing.T) {
	f := newFixture(t)
	d := f.donation(5, donation.KindPledge, 42, donation.StatusCancelled, false)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), donation.NewStatusUpdateEvent(d, donation.StatusPending, donation.StatusCancelled, time.Now())))

	assert.Equal(t, []nvo.MailType{nvo.MailTypePledgeCancelled}, mailTypes(f.jobs.All()))
}

func TestGoalReachedMailsOwnerAndAdmin(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), campaign.NewGoalReachedEvent(f.campaign, time.Now())))

	jobs := f.jobs.All()
	require.Len(t, jobs, 2)
	assert.Equal(t, uint(7), jobs[0].RecipientUserID())
	assert.Equal(t, notification.AdminRecipient, jobs[1].RecipientUserID())
	assert.Equal(t, activity.ActionGoalReached, f.activity.Records()[0].Action)
}

func TestCampaignPostUpdateMailsEachBacker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, userID := range []uint{42, 43, 42} {
		d := f.donation(uint(10+i), donation.KindDonation, userID, donation.StatusCompleted, false)
		require.NoError(t, f.donations.Create(ctx, d))
	}
	pending := f.donation(20, donation.KindDonation, 44, donation.StatusPending, false)
	require.NoError(t, f.donations.Create(ctx, pending))

	require.NoError(t, f.dispatcher.Dispatch(ctx, campaign.NewPostUpdateEvent(f.campaign, "Seeds arrived", "<p>Planting soon</p>", time.Now())))

	jobs := f.jobs.All()
	require.Len(t, jobs, 2)
	assert.Equal(t, uint(42), jobs[0].RecipientUserID())
	assert.Equal(t, uint(43), jobs[1].RecipientUserID())
	assert.Equal(t, "Seeds arrived", jobs[0].Payload()["post_title"])
}

func TestCampaignEndedMailsOwner(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), campaign.NewEndedEvent(f.campaign, time.Now())))

	jobs := f.jobs.All()
	require.Len(t, jobs, 1)
	assert.Equal(t, nvo.MailTypeCampaignEnded, jobs[0].MailType())
	assert.Equal(t, false, jobs[0].Payload()["goal_reached"])
}

func TestBindingTableIsFrozen(t *testing.T) {
	table := NewBindingTable(NewActivityListener(testutil.NewMockActivityRepository()), NewMailListeners(nil, nil, nil, logger.NewNopLogger()))
	assert.True(t, table.Frozen())
	chain := table.Listeners(events.PledgeCreated)
	names := make([]string, 0, len(chain))
	for _, l := range chain {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"activity", "mail.donation_admin_notice", "mail.offline_pledge_created", "mail.pledge_created"}, names)
}

type failingScheduler struct {
	failOn     int
	recipients []uint
}

func (s *failingScheduler) Schedule(ctx context.Context, job *notification.MailJob) error {
	s.recipients = append(s.recipients, job.RecipientUserID())
	if len(s.recipients) == s.failOn {
		return notifytest.ErrStorageDown
	}
	return nil
}

func TestMailListener_FailedRecipientDoesNotStopFanOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, userID := range []uint{42, 43, 44} {
		d := f.donation(uint(30+i), donation.KindDonation, userID, donation.StatusCompleted, false)
		require.NoError(t, f.donations.Create(ctx, d))
	}
	sched := &failingScheduler{failOn: 2}
	listener := NewMailListeners(sched, nil, f.donations, logger.NewNopLogger()).CampaignPostUpdate()

	err := listener.Handle(ctx, campaign.NewPostUpdateEvent(f.campaign, "Seeds arrived", "Planting soon", time.Now()))

	require.Error(t, err)
	assert.ErrorIs(t, err, notifytest.ErrStorageDown)
	assert.ElementsMatch(t, []uint{42, 43, 44}, sched.recipients)
}
