package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailType_IsValid(t *testing.T) {
	assert.True(t, MailTypeGoalReached.IsValid())
	assert.True(t, MailTypeOfflinePledge.IsValid())
	assert.False(t, MailType("newsletter").IsValid())
}

func TestJobStatus(t *testing.T) {
	assert.False(t, JobStatusQueued.IsFinal())
	assert.True(t, JobStatusDead.IsFinal())
	assert.False(t, JobStatus("sending").IsValid())
}
