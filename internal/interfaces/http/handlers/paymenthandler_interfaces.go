package handlers

import (
	"context"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	"github.com/fundhive/fundhive/internal/application/payment/usecases"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
)

// Use case interfaces for PaymentHandler

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) (*usecases.HandleWebhookResult, error)
}

type chargeUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChargeCommand) (*dto.PaymentResponse, error)
}

type getPaymentStatusUseCase interface {
	Execute(ctx context.Context, gatewayName, transactionID string) (*dto.PaymentStatus, error)
}

// gatewayCatalog is the read side of the gateway registry.
type gatewayCatalog interface {
	List(filter vo.GatewayFilter) []paymentgateway.Manifest
	Manifest(name string) (paymentgateway.Manifest, bool)
}

type gatewayReloader interface {
	ReloadGateways() error
}

type createDonationUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateDonationCommand) (*donation.Donation, error)
}
