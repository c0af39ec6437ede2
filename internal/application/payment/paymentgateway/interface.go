// Package paymentgateway defines the contract every payment processor module
// implements and the registry that discovers, enables and resolves them.
package paymentgateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
)

// ErrUnsupported is returned by gateways for operations they do not offer.
var ErrUnsupported = errors.New("operation not supported by gateway")

// ErrUnrecognizedEvent is returned by ParseWebhook for an authentic delivery
// that carries no payment the core can act on. It is acknowledged and ignored.
var ErrUnrecognizedEvent = errors.New("webhook event not handled by gateway")

// Gateway is the contract between the core and a payment processor. The core
// never depends on a processor SDK; everything crosses this boundary as DTOs.
type Gateway interface {
	// Charge fails with a gateway_transport error on network failure or
	// timeout and is never retried internally.
	Charge(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error)
	SavePaymentMethod(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error)
	GetStatus(ctx context.Context, transactionID string) (*dto.PaymentStatus, error)
	// ParseWebhook authenticates and decodes a raw delivery. A bad signature
	// is a webhook_authentication error.
	ParseWebhook(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error)
}

// RedirectCapable is implemented by gateways that send the payer to a hosted
// page and therefore need success and cancel URLs.
type RedirectCapable interface {
	RequiresRedirect() bool
}

// RequiresRedirect reports whether g needs success and cancel URLs.
func RequiresRedirect(g Gateway) bool {
	rc, ok := g.(RedirectCapable)
	return ok && rc.RequiresRedirect()
}
