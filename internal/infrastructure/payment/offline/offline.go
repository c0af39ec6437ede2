// Package offline is the manual bank-transfer gateway. Charging only mints a
// reference and returns payment instructions; settlement is confirmed later
// by a signed back-office notification.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/gatewayhttp"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/id"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	Name            = "offline"
	SignatureHeader = "X-Offline-Signature"

	defaultInstructions = "Transfer the amount below to our bank account and quote the reference."
)

func Module() paymentgateway.Module {
	return paymentgateway.Module{
		Manifest: paymentgateway.Manifest{
			Name:  Name,
			Type:  vo.GatewayTypeManual,
			Class: Name,
			Config: paymentgateway.ManifestConfig{
				Label: "Bank transfer",
			},
			IsEnabled: true,
			Fields: []paymentgateway.ManifestField{
				{Name: "bank_name", Label: "Bank name", Type: "text"},
				{Name: "account_name", Label: "Account holder", Type: "text"},
				{Name: "account_number", Label: "Account number / IBAN", Type: "text"},
				{Name: "instructions", Label: "Instructions", Type: "textarea"},
				{Name: "webhook_secret", Label: "Back-office signing secret", Type: "password"},
			},
		},
		New: func(cfg paymentgateway.ModuleConfig) (paymentgateway.Gateway, error) {
			return New(cfg), nil
		},
	}
}

type Gateway struct {
	bank          map[string]string
	webhookSecret string
	clock         biztime.Clock
	logger        logger.Interface
}

var _ paymentgateway.Gateway = (*Gateway)(nil)

func New(cfg paymentgateway.ModuleConfig) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	bank := make(map[string]string, len(cfg.Settings.Extra))
	for k, v := range cfg.Settings.Extra {
		bank[k] = v
	}
	return &Gateway{
		bank:          bank,
		webhookSecret: cfg.Settings.WebhookSecret,
		clock:         biztime.System,
		logger:        log,
	}
}

// WithClock overrides the clock used for webhook timestamp checks.
func (g *Gateway) WithClock(c biztime.Clock) *Gateway {
	g.clock = c
	return g
}

// Charge returns the transfer instructions and a fresh "off_" reference.
func (g *Gateway) Charge(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error) {
	ref, err := id.GenerateWithPrefix(id.PrefixOfflineTransaction, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate offline reference: %w", err)
	}

	instructions := g.bank["instructions"]
	if instructions == "" {
		instructions = defaultInstructions
	}

	fields := []dto.FormField{
		{Name: "reference", Label: "Payment reference", Type: "text", Value: ref},
		{Name: "amount", Label: "Amount", Type: "text", Value: payload.Money().String()},
	}
	for _, f := range []struct{ key, label string }{
		{"bank_name", "Bank"},
		{"account_name", "Account holder"},
		{"account_number", "Account number"},
	} {
		if v := g.bank[f.key]; v != "" {
			fields = append(fields, dto.FormField{Name: f.key, Label: f.label, Type: "text", Value: v})
		}
	}

	g.logger.Infow("offline payment reference issued", "order_id", payload.OrderID(), "reference", ref)

	return dto.NewPaymentResponse(dto.PaymentResponseParams{
		TransactionID: ref,
		PaymentForm: &dto.PaymentForm{
			Instructions: instructions,
			Fields:       fields,
		},
	})
}

func (g *Gateway) SavePaymentMethod(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error) {
	return nil, paymentgateway.ErrUnsupported
}

// GetStatus has nothing to poll: a transfer stays pending until the back
// office confirms it.
func (g *Gateway) GetStatus(ctx context.Context, transactionID string) (*dto.PaymentStatus, error) {
	if !id.HasPrefix(transactionID, id.PrefixOfflineTransaction) {
		return nil, apperrors.NewNotFoundError("offline reference not found", transactionID)
	}
	return dto.NewPaymentStatus(dto.PaymentStatusParams{
		Status:        vo.PaymentStatusPending,
		TransactionID: transactionID,
	})
}

type confirmation struct {
	Type          string          `json:"type"`
	TransactionID string          `json:"transaction_id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Note          string          `json:"note"`
}

// ParseWebhook accepts the back-office confirmation for a transfer:
// offline.received, offline.rejected or offline.cancelled.
func (g *Gateway) ParseWebhook(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error) {
	if err := gatewayhttp.Verify(g.webhookSecret, headers.Get(SignatureHeader), body, g.clock.Now(), gatewayhttp.DefaultSignatureTolerance); err != nil {
		return nil, err
	}

	var c confirmation
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}
	if c.TransactionID != "" && !id.HasPrefix(c.TransactionID, id.PrefixOfflineTransaction) {
		return nil, apperrors.NewFieldValidationError("Invalid webhook payload", apperrors.FieldError{
			Field:   "transaction_id",
			Message: "transaction_id is not an offline reference",
		})
	}

	var status vo.PaymentStatus
	switch c.Type {
	case "offline.received":
		status = vo.PaymentStatusSuccess
	case "offline.rejected", "offline.cancelled":
		status = vo.PaymentStatusFailed
	default:
		if c.TransactionID == "" {
			return nil, fmt.Errorf("%w: %s", paymentgateway.ErrUnrecognizedEvent, c.Type)
		}
		status = vo.PaymentStatusPending
	}

	var metadata map[string]string
	if c.Note != "" {
		metadata = map[string]string{"note": c.Note}
	}

	return dto.NewWebhookResponse(dto.WebhookResponseParams{
		Type:          c.Type,
		Status:        status,
		TransactionID: c.TransactionID,
		OrderID:       c.OrderID,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Metadata:      metadata,
		Raw: map[string]any{
			"type":           c.Type,
			"transaction_id": c.TransactionID,
			"order_id":       c.OrderID,
		},
	})
}
