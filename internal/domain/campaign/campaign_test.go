package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

func publishedCampaign(t *testing.T, goal string) *Campaign {
	t.Helper()
	c, err := NewCampaign(NewParams{OwnerUserID: 9, Title: "Solar school roof", Goal: vo.MustMoney(goal, "USD")})
	require.NoError(t, err)
	require.NoError(t, c.SetID(7))
	require.NoError(t, c.ChangeStatus(StatusPublished))
	c.PullEvents()
	return c
}

func TestNewCampaign_Validation(t *testing.T) {
	_, err := NewCampaign(NewParams{Title: "x", Goal: vo.MustMoney("1", "USD")})
	assert.Error(t, err)
	_, err = NewCampaign(NewParams{OwnerUserID: 1, Title: "  ", Goal: vo.MustMoney("1", "USD")})
	assert.Error(t, err)
	_, err = NewCampaign(NewParams{OwnerUserID: 1, Title: "x", Goal: vo.ZeroMoney("USD")})
	assert.Error(t, err)

	c, err := NewCampaign(NewParams{OwnerUserID: 1, Title: "x", Goal: vo.MustMoney("100", "EUR")})
	require.NoError(t, err)
	assert.True(t, c.Raised().IsZero())
	assert.Equal(t, "EUR", c.Raised().Currency())
	assert.Equal(t, StatusDraft, c.Status())
}

func TestAddContribution_GoalReachedOnce(t *testing.T) {
	c := publishedCampaign(t, "100")

	require.NoError(t, c.AddContribution(vo.MustMoney("60", "USD")))
	assert.Empty(t, c.PullEvents())
	assert.Nil(t, c.GoalReachedAt())

	require.NoError(t, c.AddContribution(vo.MustMoney("40", "USD")))
	evts := c.PullEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.GoalReached, evts[0].EventType())
	assert.NotNil(t, c.GoalReachedAt())

	require.NoError(t, c.AddContribution(vo.MustMoney("10", "USD")))
	assert.Empty(t, c.PullEvents(), "goal reached must fire only once")
	assert.Equal(t, "110.00 USD", c.Raised().String())
}

func TestAddContribution_GoalFlagSurvivesReload(t *testing.T) {
	reached := time.Now().UTC()
	c := Reconstruct(ReconstructParams{
		ID:            7,
		OwnerUserID:   9,
		Title:         "Roof",
		Goal:          vo.MustMoney("100", "USD"),
		Raised:        vo.MustMoney("90", "USD"),
		Status:        StatusPublished,
		GoalReachedAt: &reached,
		Version:       4,
	})

	require.NoError(t, c.AddContribution(vo.MustMoney("20", "USD")))
	assert.Empty(t, c.PullEvents())
	assert.Equal(t, 5, c.Version())
}

func TestAddContribution_CurrencyMismatch(t *testing.T) {
	c := publishedCampaign(t, "100")
	assert.Error(t, c.AddContribution(vo.MustMoney("1", "EUR")))
}

func TestRemoveContribution_FloorsAtZero(t *testing.T) {
	c := publishedCampaign(t, "100")
	require.NoError(t, c.AddContribution(vo.MustMoney("5", "USD")))
	require.NoError(t, c.RemoveContribution(vo.MustMoney("8", "USD")))
	assert.True(t, c.Raised().IsZero())
}

func TestStatusChanges(t *testing.T) {
	c, err := NewCampaign(NewParams{OwnerUserID: 9, Title: "Roof", Goal: vo.MustMoney("100", "USD")})
	require.NoError(t, err)

	assert.ErrorIs(t, c.End(), ErrInvalidStatusChange)

	require.NoError(t, c.ChangeStatus(StatusPublished))
	evts := c.PullEvents()
	require.Len(t, evts, 1)
	upd := evts[0].(*StatusUpdateEvent)
	assert.Equal(t, StatusDraft, upd.OldStatus)
	assert.Equal(t, StatusPublished, upd.NewStatus)

	require.NoError(t, c.ChangeStatus(StatusEnded))
	evts = c.PullEvents()
	require.Len(t, evts, 1)
	ended := evts[0].(*EndedEvent)
	assert.Equal(t, events.CampaignEnded, ended.EventType())
	assert.False(t, ended.GoalReached)

	assert.ErrorIs(t, c.ChangeStatus(StatusPublished), ErrInvalidStatusChange)
}

func TestPublishUpdate_SanitisesBody(t *testing.T) {
	c := publishedCampaign(t, "100")

	require.NoError(t, c.PublishUpdate("Week 2", `<p>Tiles arrived</p><script>alert(1)</script>`))
	evts := c.PullEvents()
	require.Len(t, evts, 1)
	post := evts[0].(*PostUpdateEvent)
	assert.Equal(t, "<p>Tiles arrived</p>", post.PostBody)
	assert.Equal(t, "Week 2", post.PostTitle)
	assert.Contains(t, post.Activity().Message, "Week 2")

	assert.Error(t, c.PublishUpdate(" ", "body"))
}

func TestIsExpired(t *testing.T) {
	ends := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c := Reconstruct(ReconstructParams{ID: 1, Status: StatusPublished, EndsAt: &ends})
	assert.False(t, c.IsExpired(ends.Add(-time.Second)))
	assert.True(t, c.IsExpired(ends))

	draft := Reconstruct(ReconstructParams{ID: 2, Status: StatusDraft, EndsAt: &ends})
	assert.False(t, draft.IsExpired(ends.Add(time.Hour)))
}
