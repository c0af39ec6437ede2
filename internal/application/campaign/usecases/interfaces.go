package usecases

import (
	"context"

	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, event events.DomainEvent) error
}
