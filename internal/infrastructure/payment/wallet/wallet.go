// Package wallet is the hosted digital-wallet gateway module. The payer is
// always redirected to the wallet's approval page, so success and cancel
// URLs are mandatory.
package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

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
	Name            = "wallet"
	SignatureHeader = "X-Wallet-Signature"
)

func Module() paymentgateway.Module {
	return paymentgateway.Module{
		Manifest: paymentgateway.Manifest{
			Name:  Name,
			Type:  vo.GatewayTypeOnline,
			Class: Name,
			Config: paymentgateway.ManifestConfig{
				Label: "Digital wallet",
			},
			IsEnabled: false,
			Fields: []paymentgateway.ManifestField{
				{Name: "merchant_id", Label: "Merchant ID", Type: "text"},
				{Name: "api_key", Label: "API key", Type: "password"},
				{Name: "webhook_secret", Label: "Webhook secret", Type: "password"},
			},
		},
		New: func(cfg paymentgateway.ModuleConfig) (paymentgateway.Gateway, error) {
			return New(cfg)
		},
	}
}

type Gateway struct {
	client        *gatewayhttp.Client
	merchantID    string
	webhookSecret string
	clock         biztime.Clock
	logger        logger.Interface
}

var (
	_ paymentgateway.Gateway         = (*Gateway)(nil)
	_ paymentgateway.RedirectCapable = (*Gateway)(nil)
)

func New(cfg paymentgateway.ModuleConfig) (*Gateway, error) {
	if cfg.Settings.BaseURL == "" {
		return nil, fmt.Errorf("wallet: base_url is required")
	}
	if cfg.Settings.APIKey == "" {
		return nil, fmt.Errorf("wallet: api_key is required")
	}
	if cfg.Settings.WebhookSecret == "" {
		return nil, fmt.Errorf("wallet: webhook_secret is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Gateway{
		client:        gatewayhttp.NewClient(Name, cfg.Settings.BaseURL, cfg.Settings.APIKey, cfg.HTTPClient),
		merchantID:    cfg.Settings.Extra["merchant_id"],
		webhookSecret: cfg.Settings.WebhookSecret,
		clock:         biztime.System,
		logger:        log,
	}, nil
}

// WithClock overrides the clock used for webhook timestamp checks.
func (g *Gateway) WithClock(c biztime.Clock) *Gateway {
	g.clock = c
	return g
}

func (g *Gateway) RequiresRedirect() bool { return true }

type checkoutRequest struct {
	MerchantID  string            `json:"merchant_id,omitempty"`
	Reference   string            `json:"reference"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	ReturnURL   string            `json:"return_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Payer       *payer            `json:"payer,omitempty"`
}

type payer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type checkout struct {
	ID         string            `json:"id"`
	Reference  string            `json:"reference"`
	Status     string            `json:"status"`
	ApproveURL string            `json:"approve_url"`
	Amount     decimal.Decimal   `json:"amount"`
	Fee        decimal.Decimal   `json:"fee"`
	Currency   string            `json:"currency"`
	PayerID    string            `json:"payer_id"`
	Metadata   map[string]string `json:"metadata"`
}

func (g *Gateway) Charge(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error) {
	req := checkoutRequest{
		MerchantID:  g.merchantID,
		Reference:   payload.OrderID(),
		Amount:      payload.Amount(),
		Currency:    payload.Currency(),
		Description: payload.Description(),
		ReturnURL:   payload.SuccessURL(),
		CancelURL:   payload.CancelURL(),
		Metadata:    payload.Metadata(),
	}
	if c, ok := payload.Customer(); ok {
		req.Payer = &payer{ID: c.UserID(), Email: c.Email(), Name: c.Name()}
	}

	sessionKey, err := id.GenerateWithPrefix(id.PrefixWalletSession, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet session key: %w", err)
	}
	headers := http.Header{"Idempotency-Key": {sessionKey}}

	var co checkout
	if err := g.client.PostJSON(ctx, "/v1/checkouts", req, headers, &co); err != nil {
		return nil, err
	}

	g.logger.Debugw("wallet checkout created", "id", co.ID, "order_id", payload.OrderID(), "session", sessionKey)

	return dto.NewPaymentResponse(dto.PaymentResponseParams{
		IsRedirect:    true,
		RedirectURL:   co.ApproveURL,
		TransactionID: co.ID,
		Raw:           map[string]any{"session_key": sessionKey, "status": co.Status},
	})
}

// SavePaymentMethod is not offered: the wallet never exposes reusable tokens.
func (g *Gateway) SavePaymentMethod(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error) {
	return nil, paymentgateway.ErrUnsupported
}

func (g *Gateway) GetStatus(ctx context.Context, transactionID string) (*dto.PaymentStatus, error) {
	if transactionID == "" {
		return nil, apperrors.NewValidationError("transaction id is required")
	}

	var co checkout
	if err := g.client.Get(ctx, "/v1/checkouts/"+url.PathEscape(transactionID), &co); err != nil {
		return nil, err
	}

	return dto.NewPaymentStatus(dto.PaymentStatusParams{
		Status:        checkoutStatus(co.Status),
		TransactionID: co.ID,
		Amount:        co.Amount,
		Currency:      co.Currency,
		Raw:           map[string]any{"status": co.Status},
	})
}

func checkoutStatus(s string) vo.PaymentStatus {
	switch strings.ToUpper(s) {
	case "COMPLETED":
		return vo.PaymentStatusSuccess
	case "DECLINED", "VOIDED", "EXPIRED":
		return vo.PaymentStatusFailed
	case "REFUNDED":
		return vo.PaymentStatusRefunded
	default:
		return vo.PaymentStatusPending
	}
}

type notification struct {
	ID        string   `json:"id"`
	EventType string   `json:"event_type"`
	Resource  checkout `json:"resource"`
}

// ParseWebhook verifies the X-Wallet-Signature header and maps checkout
// notifications onto the canonical webhook shape.
func (g *Gateway) ParseWebhook(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error) {
	if err := gatewayhttp.Verify(g.webhookSecret, headers.Get(SignatureHeader), body, g.clock.Now(), gatewayhttp.DefaultSignatureTolerance); err != nil {
		return nil, err
	}

	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	var status vo.PaymentStatus
	switch n.EventType {
	case "checkout.completed":
		status = vo.PaymentStatusSuccess
	case "checkout.declined", "checkout.voided", "checkout.cancelled":
		status = vo.PaymentStatusFailed
	case "checkout.refunded":
		status = vo.PaymentStatusRefunded
	default:
		if n.Resource.ID == "" {
			return nil, fmt.Errorf("%w: %s", paymentgateway.ErrUnrecognizedEvent, n.EventType)
		}
		status = vo.PaymentStatusPending
	}

	return dto.NewWebhookResponse(dto.WebhookResponseParams{
		Type:          n.EventType,
		Status:        status,
		TransactionID: n.Resource.ID,
		OrderID:       n.Resource.Reference,
		Amount:        n.Resource.Amount,
		Fee:           n.Resource.Fee,
		Currency:      n.Resource.Currency,
		CustomerID:    n.Resource.PayerID,
		Metadata:      n.Resource.Metadata,
		Raw:           raw,
	})
}
