package usecases

import (
	"context"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

// GatewayResolver looks a gateway up by name. *paymentgateway.Registry
// implements it.
type GatewayResolver interface {
	Resolve(name string) (paymentgateway.Gateway, error)
}

// TransactionLocker serialises work on one processor transaction across
// concurrent deliveries.
type TransactionLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventDispatcher delivers committed domain events to their listeners.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event events.DomainEvent) error
}
