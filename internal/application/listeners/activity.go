// Package listeners holds the side effects bound to domain events: the
// activity timeline and the deferred mails.
package listeners

import (
	"context"
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/activity"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

// ActivityListener persists the timeline entry an event describes.
type ActivityListener struct {
	records activity.Repository
}

func NewActivityListener(records activity.Repository) *ActivityListener {
	return &ActivityListener{records: records}
}

func (l *ActivityListener) Name() string { return "activity" }

func (l *ActivityListener) Handle(ctx context.Context, event events.DomainEvent) error {
	src, ok := event.(activity.Source)
	if !ok {
		return nil
	}
	rec := src.Activity()
	if rec == nil {
		return nil
	}
	if err := l.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to record activity for %s: %w", event.EventType(), err)
	}
	return nil
}
