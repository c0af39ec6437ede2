package events

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/shared/logger"
)

type testEvent struct {
	BaseEvent
}

func newTestEvent(t EventType) testEvent {
	return testEvent{NewBaseEvent(t, "42", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))}
}

func recording(name string, calls *[]string, err error) Listener {
	return ListenerFunc(name, func(ctx context.Context, event DomainEvent) error {
		*calls = append(*calls, name)
		return err
	})
}

func TestDispatcher_RunsInRegistrationOrder(t *testing.T) {
	var calls []string
	table := NewBindingTable().
		Bind(PledgeCreated, recording("a", &calls, nil), recording("b", &calls, nil)).
		Bind(PledgeCreated, recording("c", &calls, nil)).
		Freeze()

	d := NewDispatcher(table, logger.NewNopLogger())
	require.NoError(t, d.Dispatch(context.Background(), newTestEvent(PledgeCreated)))

	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestDispatcher_FailureDoesNotStopChain(t *testing.T) {
	var calls []string
	boom := stderrors.New("mail backend down")
	table := NewBindingTable().
		Bind(GoalReached,
			recording("a", &calls, nil),
			recording("b", &calls, boom),
			recording("c", &calls, nil),
		).
		Freeze()

	err := NewDispatcher(table, logger.NewNopLogger()).Dispatch(context.Background(), newTestEvent(GoalReached))

	assert.Equal(t, []string{"a", "b", "c"}, calls)
	var execErr *ListenerExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, GoalReached, execErr.EventType)
	require.Len(t, execErr.Failures, 1)
	assert.Equal(t, "b", execErr.Failures[0].Listener)
	assert.ErrorIs(t, err, boom)
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	var calls []string
	panicky := ListenerFunc("panicky", func(ctx context.Context, event DomainEvent) error {
		panic("nil map")
	})
	table := NewBindingTable().
		Bind(CampaignEnded, panicky, recording("after", &calls, nil)).
		Freeze()

	err := NewDispatcher(table, logger.NewNopLogger()).Dispatch(context.Background(), newTestEvent(CampaignEnded))

	assert.Equal(t, []string{"after"}, calls)
	var execErr *ListenerExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.Failures[0].Panicked)
	assert.Contains(t, execErr.Error(), "listener_execution")
}

func TestDispatcher_UnboundEventIsNoop(t *testing.T) {
	table := NewBindingTable().Freeze()
	err := NewDispatcher(table, logger.NewNopLogger()).Dispatch(context.Background(), newTestEvent(CampaignPostUpdate))
	assert.NoError(t, err)
}

func TestBindingTable_BindAfterFreezePanics(t *testing.T) {
	table := NewBindingTable().Freeze()
	assert.True(t, table.Frozen())
	assert.Panics(t, func() {
		table.Bind(DonationCreated, ListenerFunc("late", func(context.Context, DomainEvent) error { return nil }))
	})
}

func TestBindingTable_ListenersReturnsCopy(t *testing.T) {
	l := ListenerFunc("only", func(context.Context, DomainEvent) error { return nil })
	table := NewBindingTable().Bind(DonationCreated, l).Freeze()

	chain := table.Listeners(DonationCreated)
	chain[0] = nil

	assert.NotNil(t, table.Listeners(DonationCreated)[0])
}

func TestRecorder_PullClears(t *testing.T) {
	var r Recorder
	r.Record(newTestEvent(DonationCreated))
	assert.Len(t, r.PullEvents(), 1)
	assert.Empty(t, r.PullEvents())
}
