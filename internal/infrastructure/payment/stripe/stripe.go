// Package stripe is the card gateway module. It talks to the Stripe REST API
// with form-encoded requests and verifies Stripe-Signature webhooks.
package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/gatewayhttp"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	Name           = "stripe"
	defaultBaseURL = "https://api.stripe.com"
	checkoutPrefix = "cs_"
)

// Module returns the compiled-in card gateway with its built-in manifest.
func Module() paymentgateway.Module {
	return paymentgateway.Module{
		Manifest: paymentgateway.Manifest{
			Name:                   Name,
			Type:                   vo.GatewayTypeOnline,
			SupportsFuturePayments: true,
			FrontendScript:         "https://js.stripe.com/v3/",
			Class:                  Name,
			Config: paymentgateway.ManifestConfig{
				Label: "Credit card",
			},
			IsEnabled: false,
			Fields: []paymentgateway.ManifestField{
				{Name: "publishable_key", Label: "Publishable key", Type: "text"},
				{Name: "api_key", Label: "Secret key", Type: "password"},
				{Name: "webhook_secret", Label: "Webhook signing secret", Type: "password"},
			},
		},
		New: func(cfg paymentgateway.ModuleConfig) (paymentgateway.Gateway, error) {
			return New(cfg)
		},
	}
}

// Gateway charges cards through payment intents, or hosted checkout when the
// payer has no tokenised card yet.
type Gateway struct {
	client        *gatewayhttp.Client
	webhookSecret string
	clock         biztime.Clock
	logger        logger.Interface
}

var _ paymentgateway.Gateway = (*Gateway)(nil)

func New(cfg paymentgateway.ModuleConfig) (*Gateway, error) {
	if cfg.Settings.APIKey == "" {
		return nil, fmt.Errorf("stripe: api_key is required")
	}
	if cfg.Settings.WebhookSecret == "" {
		return nil, fmt.Errorf("stripe: webhook_secret is required")
	}
	baseURL := cfg.Settings.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Gateway{
		client:        gatewayhttp.NewClient(Name, baseURL, cfg.Settings.APIKey, cfg.HTTPClient),
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

type nextAction struct {
	RedirectToURL *struct {
		URL string `json:"url"`
	} `json:"redirect_to_url"`
}

// object is the subset of intent, charge and checkout session fields the
// gateway reads.
type object struct {
	ID                string            `json:"id"`
	Object            string            `json:"object"`
	Amount            int64             `json:"amount"`
	AmountReceived    int64             `json:"amount_received"`
	AmountRefunded    int64             `json:"amount_refunded"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	PaymentIntent     string            `json:"payment_intent"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          string            `json:"customer"`
	Metadata          map[string]string `json:"metadata"`
	URL               string            `json:"url"`
	NextAction        *nextAction       `json:"next_action"`
}

func (o object) redirectURL() string {
	if o.NextAction == nil || o.NextAction.RedirectToURL == nil {
		return ""
	}
	return o.NextAction.RedirectToURL.URL
}

func (g *Gateway) Charge(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error) {
	if payload.PaymentTokenID() == "" {
		return g.checkout(ctx, payload)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(payload.Money().MinorUnits(), 10))
	form.Set("currency", strings.ToLower(payload.Currency()))
	form.Set("payment_method", payload.PaymentTokenID())
	form.Set("confirm", "true")
	if payload.Description() != "" {
		form.Set("description", payload.Description())
	}
	if payload.RedirectURL() != "" {
		form.Set("return_url", payload.RedirectURL())
	}
	if c, ok := payload.Customer(); ok {
		form.Set("receipt_email", c.Email())
	}
	setMetadata(form, payload.Metadata(), payload.OrderID())

	var pi object
	if err := g.client.PostForm(ctx, "/v1/payment_intents", form, idempotency(payload.OrderID()), &pi); err != nil {
		return nil, err
	}

	g.logger.Debugw("payment intent created", "id", pi.ID, "status", pi.Status, "order_id", payload.OrderID())

	redirect := pi.Status == "requires_action" && pi.redirectURL() != ""
	return dto.NewPaymentResponse(dto.PaymentResponseParams{
		IsRedirect:    redirect,
		RedirectURL:   pi.redirectURL(),
		TransactionID: pi.ID,
		Raw:           map[string]any{"status": pi.Status},
	})
}

func (g *Gateway) checkout(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error) {
	var missing []apperrors.FieldError
	if payload.SuccessURL() == "" {
		missing = append(missing, apperrors.FieldError{Field: "success_url", Message: "success_url is required for hosted checkout"})
	}
	if payload.CancelURL() == "" {
		missing = append(missing, apperrors.FieldError{Field: "cancel_url", Message: "cancel_url is required for hosted checkout"})
	}
	if len(missing) > 0 {
		return nil, apperrors.NewFieldValidationError("Invalid payment payload", missing...)
	}

	name := payload.Description()
	if name == "" {
		name = "Donation " + payload.OrderID()
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", payload.SuccessURL())
	form.Set("cancel_url", payload.CancelURL())
	form.Set("client_reference_id", payload.OrderID())
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(payload.Currency()))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(payload.Money().MinorUnits(), 10))
	form.Set("line_items[0][price_data][product_data][name]", name)
	if c, ok := payload.Customer(); ok {
		form.Set("customer_email", c.Email())
	}
	setMetadata(form, payload.Metadata(), payload.OrderID())

	var session object
	if err := g.client.PostForm(ctx, "/v1/checkout/sessions", form, idempotency(payload.OrderID()), &session); err != nil {
		return nil, err
	}

	return dto.NewPaymentResponse(dto.PaymentResponseParams{
		IsRedirect:    true,
		RedirectURL:   session.URL,
		TransactionID: session.ID,
	})
}

// SavePaymentMethod attaches the card for off-session use. A positive amount
// places a manual-capture hold instead, which is how pledges are backed.
func (g *Gateway) SavePaymentMethod(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error) {
	form := url.Values{}
	form.Set("payment_method", payload.PaymentTokenID())
	form.Set("confirm", "true")
	for k, v := range payload.Metadata() {
		form.Set("metadata["+k+"]", v)
	}
	form.Set("metadata[user_id]", payload.Customer().UserID())

	path := "/v1/setup_intents"
	if payload.IsPreAuthorisation() {
		path = "/v1/payment_intents"
		amount, err := vo.NewMoney(payload.Amount(), payload.Currency())
		if err != nil {
			return nil, apperrors.NewValidationError("Invalid save payment method payload", err.Error())
		}
		form.Set("amount", strconv.FormatInt(amount.MinorUnits(), 10))
		form.Set("currency", strings.ToLower(payload.Currency()))
		form.Set("capture_method", "manual")
		form.Set("receipt_email", payload.Customer().Email())
	} else {
		form.Set("usage", "off_session")
	}
	if payload.SuccessURL() != "" {
		form.Set("return_url", payload.SuccessURL())
	}

	var intent object
	if err := g.client.PostForm(ctx, path, form, nil, &intent); err != nil {
		return nil, err
	}

	redirect := intent.Status == "requires_action" && intent.redirectURL() != ""
	return dto.NewPaymentResponse(dto.PaymentResponseParams{
		IsRedirect:    redirect,
		RedirectURL:   intent.redirectURL(),
		TransactionID: intent.ID,
		Raw:           map[string]any{"status": intent.Status},
	})
}

func (g *Gateway) GetStatus(ctx context.Context, transactionID string) (*dto.PaymentStatus, error) {
	if transactionID == "" {
		return nil, apperrors.NewValidationError("transaction id is required")
	}

	var obj object
	if strings.HasPrefix(transactionID, checkoutPrefix) {
		if err := g.client.Get(ctx, "/v1/checkout/sessions/"+url.PathEscape(transactionID), &obj); err != nil {
			return nil, err
		}
		return statusOf(obj, sessionStatus(obj), obj.AmountTotal)
	}

	if err := g.client.Get(ctx, "/v1/payment_intents/"+url.PathEscape(transactionID), &obj); err != nil {
		return nil, err
	}
	amount := obj.AmountReceived
	if amount == 0 {
		amount = obj.Amount
	}
	return statusOf(obj, intentStatus(obj.Status), amount)
}

func statusOf(obj object, status vo.PaymentStatus, minor int64) (*dto.PaymentStatus, error) {
	currency := strings.ToUpper(obj.Currency)
	money, err := vo.MoneyFromMinor(minor, currency)
	if err != nil {
		return nil, apperrors.NewValidationError("malformed status response", err.Error())
	}
	return dto.NewPaymentStatus(dto.PaymentStatusParams{
		Status:        status,
		TransactionID: obj.ID,
		Amount:        money.Amount(),
		Currency:      currency,
		Raw:           map[string]any{"status": obj.Status, "payment_status": obj.PaymentStatus},
	})
}

func intentStatus(s string) vo.PaymentStatus {
	switch s {
	case "succeeded":
		return vo.PaymentStatusSuccess
	case "canceled", "requires_payment_method":
		return vo.PaymentStatusFailed
	default:
		return vo.PaymentStatusPending
	}
}

func sessionStatus(obj object) vo.PaymentStatus {
	switch {
	case obj.PaymentStatus == "paid":
		return vo.PaymentStatusSuccess
	case obj.Status == "expired":
		return vo.PaymentStatusFailed
	default:
		return vo.PaymentStatusPending
	}
}

func setMetadata(form url.Values, metadata map[string]string, orderID string) {
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}
	form.Set("metadata["+dto.ReservedMetadataKey+"]", orderID)
}

func idempotency(orderID string) http.Header {
	return http.Header{"Idempotency-Key": {"charge-" + orderID}}
}

func (g *Gateway) now() time.Time {
	return g.clock.Now()
}
