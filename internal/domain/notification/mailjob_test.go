package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
)

func newJob(t *testing.T) *MailJob {
	t.Helper()
	job, err := NewMailJob(NewMailJobParams{
		MailType:        vo.MailTypePledgeCreated,
		RecipientUserID: 3,
		Payload:         map[string]any{"order_id": "D-100"},
		Group:           "pledge:D-100",
	})
	require.NoError(t, err)
	return job
}

func TestNewMailJob(t *testing.T) {
	job := newJob(t)
	assert.NotEmpty(t, job.ID())
	assert.Equal(t, vo.JobStatusQueued, job.Status())
	assert.False(t, job.NextAttemptAt().IsZero())
	require.NotNil(t, job.ActiveGroup())
	assert.Equal(t, "pledge:D-100", *job.ActiveGroup())

	_, err := NewMailJob(NewMailJobParams{MailType: "bogus", Group: "g"})
	assert.Error(t, err)
	_, err = NewMailJob(NewMailJobParams{MailType: vo.MailTypeGoalReached})
	assert.Error(t, err)
}

func TestMailJob_RetryThenDead(t *testing.T) {
	job := newJob(t)
	retryAt := time.Now().Add(time.Minute)

	require.NoError(t, job.MarkFailed(errors.New("smtp 451"), retryAt, 2))
	assert.Equal(t, vo.JobStatusQueued, job.Status())
	assert.Equal(t, 1, job.Attempts())
	assert.Equal(t, retryAt.UTC(), job.NextAttemptAt())
	assert.Equal(t, "smtp 451", job.LastError())

	require.NoError(t, job.MarkFailed(errors.New("smtp 451"), retryAt, 2))
	assert.Equal(t, vo.JobStatusDead, job.Status())
	assert.Nil(t, job.ActiveGroup())

	assert.Error(t, job.MarkDelivered(time.Now()))
}

func TestMailJob_Delivered(t *testing.T) {
	job := newJob(t)
	now := time.Now().UTC()
	require.NoError(t, job.MarkDelivered(now))
	assert.Equal(t, vo.JobStatusDelivered, job.Status())
	assert.Equal(t, &now, job.DeliveredAt())
	assert.Nil(t, job.ActiveGroup())
	assert.Error(t, job.MarkFailed(nil, now, 3))
}

func TestMailTemplate_Render(t *testing.T) {
	tmpl, err := NewMailTemplate(vo.MailTypeGoalReached, "{{.campaign_title}} is funded", "Raised **{{.raised}}**")
	require.NoError(t, err)

	subject, body, err := tmpl.Render(map[string]any{"campaign_title": "Roof", "raised": "100.00 USD"})
	require.NoError(t, err)
	assert.Equal(t, "Roof is funded", subject)
	assert.Equal(t, "Raised **100.00 USD**", body)

	_, err = NewMailTemplate(vo.MailTypeGoalReached, "{{.broken", "x")
	assert.Error(t, err)
}
