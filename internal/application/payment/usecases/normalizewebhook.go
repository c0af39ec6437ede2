package usecases

import (
	"context"
	"errors"
	"net/http"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

// WebhookNormalizer turns a raw processor delivery into the canonical
// WebhookResponse, stamped with the gateway that parsed it.
type WebhookNormalizer struct {
	gateways GatewayResolver
	logger   logger.Interface
}

func NewWebhookNormalizer(gateways GatewayResolver, logger logger.Interface) *WebhookNormalizer {
	return &WebhookNormalizer{
		gateways: gateways,
		logger:   logger,
	}
}

// Normalize fails with gateway_not_found for an unknown gateway,
// webhook_authentication for a bad signature and validation_error for a
// payload missing type, status or transaction id.
func (n *WebhookNormalizer) Normalize(ctx context.Context, gatewayName string, body []byte, headers http.Header) (*dto.WebhookResponse, error) {
	gw, err := n.gateways.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}

	resp, err := gw.ParseWebhook(ctx, body, headers)
	if err != nil {
		if apperrors.IsWebhookAuthenticationError(err) {
			n.logger.Warnw("webhook signature rejected", "gateway", gatewayName, "error", err)
			return nil, err
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		if errors.Is(err, paymentgateway.ErrUnrecognizedEvent) {
			n.logger.Debugw("webhook event not handled", "gateway", gatewayName, "error", err)
			return nil, err
		}
		if errors.Is(err, paymentgateway.ErrUnsupported) {
			return nil, apperrors.NewBadRequestError("gateway does not accept webhooks", gatewayName)
		}
		n.logger.Warnw("malformed webhook payload", "gateway", gatewayName, "error", err)
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}
	if resp == nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", "empty response from gateway")
	}

	return resp.WithGateway(gatewayName), nil
}
