package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/application/payment/testutil"
	"github.com/fundhive/fundhive/internal/domain/campaign"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/authorization"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type recordingDispatcher struct {
	events []events.DomainEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, ev events.DomainEvent) error {
	d.events = append(d.events, ev)
	return nil
}

func seedCampaign(t *testing.T, repo *testutil.MockCampaignRepository, publish bool, endsAt *time.Time) *campaign.Campaign {
	t.Helper()
	c, err := campaign.NewCampaign(campaign.NewParams{
		OwnerUserID: 7,
		Title:       "Library roof",
		Goal:        vo.MustMoney("500", "EUR"),
		EndsAt:      endsAt,
	})
	require.NoError(t, err)
	if publish {
		require.NoError(t, c.ChangeStatus(campaign.StatusPublished))
		c.PullEvents()
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestChangeCampaignStatus(t *testing.T) {
	repo := testutil.NewMockCampaignRepository()
	dispatcher := &recordingDispatcher{}
	uc := NewChangeCampaignStatusUseCase(repo, dispatcher, logger.NewNopLogger())
	c := seedCampaign(t, repo, false, nil)

	_, err := uc.Execute(context.Background(), ChangeCampaignStatusCommand{CampaignID: c.ID(), ActorUserID: 99, Status: campaign.StatusPublished})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))

	updated, err := uc.Execute(context.Background(), ChangeCampaignStatusCommand{CampaignID: c.ID(), ActorUserID: 7, Status: campaign.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusPublished, updated.Status())
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, events.CampaignStatusUpdate, dispatcher.events[0].EventType())

	_, err = uc.Execute(context.Background(), ChangeCampaignStatusCommand{CampaignID: c.ID(), ActorUserID: 7, Status: campaign.StatusDraft})
	assert.True(t, apperrors.IsConflictError(err))

	// admins may end campaigns they do not own
	ended, err := uc.Execute(context.Background(), ChangeCampaignStatusCommand{
		CampaignID:  c.ID(),
		ActorUserID: 99,
		ActorRole:   authorization.RoleAdmin,
		Status:      campaign.StatusEnded,
	})
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusEnded, ended.Status())
	assert.Equal(t, events.CampaignEnded, dispatcher.events[len(dispatcher.events)-1].EventType())
}

func TestPublishUpdate_SanitisesBody(t *testing.T) {
	repo := testutil.NewMockCampaignRepository()
	dispatcher := &recordingDispatcher{}
	uc := NewPublishUpdateUseCase(repo, dispatcher, logger.NewNopLogger())
	c := seedCampaign(t, repo, true, nil)

	err := uc.Execute(context.Background(), PublishUpdateCommand{
		CampaignID:  c.ID(),
		ActorUserID: 7,
		Title:       "Week 3",
		Body:        `<p>Thanks!</p><script>alert(1)</script>`,
	})

	require.NoError(t, err)
	require.Len(t, dispatcher.events, 1)
	post, ok := dispatcher.events[0].(*campaign.PostUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "Week 3", post.PostTitle)
	assert.Equal(t, "<p>Thanks!</p>", post.PostBody)

	err = uc.Execute(context.Background(), PublishUpdateCommand{CampaignID: c.ID(), ActorUserID: 7})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestEndExpiredCampaigns(t *testing.T) {
	repo := testutil.NewMockCampaignRepository()
	dispatcher := &recordingDispatcher{}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := seedCampaign(t, repo, true, &past)
	seedCampaign(t, repo, true, &future)
	seedCampaign(t, repo, false, &past)

	uc := NewEndExpiredCampaignsUseCase(repo, dispatcher, biztime.NewFixedClock(now), logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, events.CampaignEnded, dispatcher.events[0].EventType())

	stored, err := repo.GetByID(context.Background(), expired.ID())
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusEnded, stored.Status())

	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
