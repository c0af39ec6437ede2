package dto

import (
	"github.com/shopspring/decimal"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
)

type WebhookResponseParams struct {
	Type           string `json:"type" validate:"required,max=128"`
	Status         vo.PaymentStatus
	TransactionID  string `json:"transaction_id" validate:"required,max=255"`
	OrderID        string `json:"order_id" validate:"max=64"`
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	Currency       string
	PaymentGateway string
	CustomerID     string
	Metadata       map[string]string
	Raw            map[string]any
}

// WebhookResponse is a normalised processor notification.
type WebhookResponse struct {
	eventType      string
	status         vo.PaymentStatus
	transactionID  string
	orderID        string
	amount         decimal.Decimal
	fee            decimal.Decimal
	currency       string
	paymentGateway string
	customerID     string
	metadata       map[string]string
	raw            map[string]any
}

func NewWebhookResponse(p WebhookResponseParams) (*WebhookResponse, error) {
	var errs fieldErrors
	errs.addStruct(p)
	if !p.Status.IsValid() {
		errs.add("status", "status must be one of [success failed pending refunded]")
	}
	checkAmount(&errs, "amount", p.Amount, true)
	checkAmount(&errs, "fee", p.Fee, true)
	if p.Currency != "" {
		checkCurrency(&errs, "currency", p.Currency)
	}
	if err := errs.err("Invalid webhook payload"); err != nil {
		return nil, err
	}

	return &WebhookResponse{
		eventType:      p.Type,
		status:         p.Status,
		transactionID:  p.TransactionID,
		orderID:        p.OrderID,
		amount:         p.Amount,
		fee:            p.Fee,
		currency:       p.Currency,
		paymentGateway: p.PaymentGateway,
		customerID:     p.CustomerID,
		metadata:       copyStrings(p.Metadata),
		raw:            copyAny(p.Raw),
	}, nil
}

// WithGateway returns a copy stamped with the gateway that parsed it.
func (w *WebhookResponse) WithGateway(name string) *WebhookResponse {
	cp := *w
	cp.paymentGateway = name
	return &cp
}

func (w *WebhookResponse) Type() string                { return w.eventType }
func (w *WebhookResponse) Status() vo.PaymentStatus    { return w.status }
func (w *WebhookResponse) TransactionID() string       { return w.transactionID }
func (w *WebhookResponse) OrderID() string             { return w.orderID }
func (w *WebhookResponse) Amount() decimal.Decimal     { return w.amount }
func (w *WebhookResponse) Fee() decimal.Decimal        { return w.fee }
func (w *WebhookResponse) Currency() string            { return w.currency }
func (w *WebhookResponse) PaymentGateway() string      { return w.paymentGateway }
func (w *WebhookResponse) CustomerID() string          { return w.customerID }
func (w *WebhookResponse) Metadata() map[string]string { return copyStrings(w.metadata) }
func (w *WebhookResponse) Raw() map[string]any         { return copyAny(w.raw) }

// HasAmount reports whether the processor reported an amount and currency.
func (w *WebhookResponse) HasAmount() bool {
	return w.currency != "" && w.amount.IsPositive()
}
