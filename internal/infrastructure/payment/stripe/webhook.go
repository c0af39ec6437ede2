package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/gatewayhttp"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

const SignatureHeader = "Stripe-Signature"

// Event types the gateway reports under its own names.
const (
	EventAuthorized = "payment_intent.authorized"
)

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseWebhook verifies the Stripe-Signature header and maps the event onto
// the canonical webhook shape. Event types the core does not act on come back
// as pending so the caller ignores them.
func (g *Gateway) ParseWebhook(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error) {
	if err := gatewayhttp.Verify(g.webhookSecret, headers.Get(SignatureHeader), body, g.now(), gatewayhttp.DefaultSignatureTolerance); err != nil {
		return nil, err
	}

	var evt event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}
	var obj object
	if len(evt.Data.Object) > 0 {
		if err := json.Unmarshal(evt.Data.Object, &obj); err != nil {
			return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
		}
	}
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	eventType := evt.Type
	txID := obj.ID
	orderID := obj.Metadata[dto.ReservedMetadataKey]
	minor := obj.AmountReceived
	var status vo.PaymentStatus

	switch evt.Type {
	case "payment_intent.succeeded":
		status = vo.PaymentStatusSuccess
	case "payment_intent.amount_capturable_updated":
		eventType = EventAuthorized
		status = vo.PaymentStatusSuccess
		minor = obj.Amount
	case "payment_intent.payment_failed", "payment_intent.canceled":
		status = vo.PaymentStatusFailed
		minor = obj.Amount
	case "charge.refunded":
		status = vo.PaymentStatusRefunded
		txID = obj.PaymentIntent
		minor = obj.AmountRefunded
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		status = sessionStatus(obj)
		minor = obj.AmountTotal
		if orderID == "" {
			orderID = obj.ClientReferenceID
		}
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		status = vo.PaymentStatusFailed
		minor = obj.AmountTotal
		if orderID == "" {
			orderID = obj.ClientReferenceID
		}
	default:
		if txID == "" {
			return nil, fmt.Errorf("%w: %s", paymentgateway.ErrUnrecognizedEvent, evt.Type)
		}
		status = vo.PaymentStatusPending
	}

	params := dto.WebhookResponseParams{
		Type:          eventType,
		Status:        status,
		TransactionID: txID,
		OrderID:       orderID,
		CustomerID:    obj.Customer,
		Metadata:      withoutOrderID(obj.Metadata),
		Raw:           raw,
	}
	if currency := strings.ToUpper(obj.Currency); currency != "" && minor > 0 {
		money, err := vo.MoneyFromMinor(minor, currency)
		if err != nil {
			return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
		}
		params.Amount = money.Amount()
		params.Currency = currency
	}

	return dto.NewWebhookResponse(params)
}

func withoutOrderID(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k != dto.ReservedMetadataKey {
			out[k] = v
		}
	}
	return out
}
