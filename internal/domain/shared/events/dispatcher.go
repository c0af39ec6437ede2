package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

// ListenerFailure is one listener's error or recovered panic.
type ListenerFailure struct {
	Listener string
	Err      error
	Panicked bool
}

// ListenerExecutionError aggregates every failure from one dispatch. The
// chain has already run to completion when it is returned.
type ListenerExecutionError struct {
	EventType EventType
	Failures  []ListenerFailure
}

func (e *ListenerExecutionError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Listener, f.Err))
	}
	return fmt.Sprintf("%s: %d listener(s) failed for %s: %s",
		errors.ErrorTypeListenerExecution, len(e.Failures), e.EventType, strings.Join(parts, "; "))
}

func (e *ListenerExecutionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Dispatcher runs the bound listeners of an event synchronously, in
// registration order, on the caller's goroutine.
type Dispatcher struct {
	table  *BindingTable
	logger logger.Interface
}

func NewDispatcher(table *BindingTable, log logger.Interface) *Dispatcher {
	return &Dispatcher{table: table, logger: log}
}

// Dispatch invokes every listener bound to the event's type. A failing or
// panicking listener does not stop the chain; failures are returned together.
func (d *Dispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	var failures []ListenerFailure
	for _, l := range d.table.Listeners(event.EventType()) {
		if f := d.invoke(ctx, l, event); f != nil {
			d.logger.Errorw("listener failed",
				"event_type", event.EventType(),
				"aggregate_id", event.AggregateID(),
				"listener", f.Listener,
				"panicked", f.Panicked,
				"error", f.Err,
			)
			failures = append(failures, *f)
		}
	}
	if len(failures) > 0 {
		return &ListenerExecutionError{EventType: event.EventType(), Failures: failures}
	}
	return nil
}

// DispatchAll dispatches events in order and joins their failures.
func (d *Dispatcher) DispatchAll(ctx context.Context, evts []DomainEvent) []error {
	var errs []error
	for _, e := range evts {
		if err := d.Dispatch(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (d *Dispatcher) invoke(ctx context.Context, l Listener, event DomainEvent) (failure *ListenerFailure) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debugw("listener panic stack", "listener", l.Name(), "stack", string(debug.Stack()))
			failure = &ListenerFailure{
				Listener: l.Name(),
				Err:      fmt.Errorf("panic: %v", r),
				Panicked: true,
			}
		}
	}()
	if err := l.Handle(ctx, event); err != nil {
		return &ListenerFailure{Listener: l.Name(), Err: err}
	}
	return nil
}
