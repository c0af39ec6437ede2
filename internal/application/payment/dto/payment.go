package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
)

// ReservedMetadataKey may not appear in caller metadata; gateways set it themselves.
const ReservedMetadataKey = "order_id"

type PaymentPayloadParams struct {
	Amount         decimal.Decimal   `json:"amount"`
	Currency       string            `json:"currency"`
	OrderID        string            `json:"order_id" validate:"required,max=64"`
	PaymentTokenID string            `json:"payment_token_id" validate:"max=255"`
	Description    string            `json:"description" validate:"max=1000"`
	RedirectURL    string            `json:"redirect_url" validate:"omitempty,url"`
	SuccessURL     string            `json:"success_url" validate:"omitempty,url"`
	CancelURL      string            `json:"cancel_url" validate:"omitempty,url"`
	Metadata       map[string]string `json:"metadata"`
	AdditionalData map[string]any    `json:"additional_data"`
	Customer       *CustomerParams   `json:"customer"`

	// RequiresRedirect is set for gateways that send the payer to a hosted
	// page; success and cancel URLs then become mandatory.
	RequiresRedirect bool `json:"-"`
}

// PaymentPayload is one validated charge attempt. It is never persisted.
type PaymentPayload struct {
	amount         decimal.Decimal
	currency       string
	orderID        string
	paymentTokenID string
	description    string
	redirectURL    string
	successURL     string
	cancelURL      string
	metadata       map[string]string
	additionalData map[string]any
	customer       *Customer
}

func NewPaymentPayload(p PaymentPayloadParams) (PaymentPayload, error) {
	var errs fieldErrors
	errs.addStruct(p)
	checkAmount(&errs, "amount", p.Amount, false)
	checkCurrency(&errs, "currency", p.Currency)
	if _, ok := p.Metadata[ReservedMetadataKey]; ok {
		errs.add("metadata.order_id", "metadata must not contain order_id")
	}
	if p.RequiresRedirect {
		if p.SuccessURL == "" {
			errs.add("success_url", "success_url is required for redirect payments")
		}
		if p.CancelURL == "" {
			errs.add("cancel_url", "cancel_url is required for redirect payments")
		}
	}
	if err := errs.err("Invalid payment payload"); err != nil {
		return PaymentPayload{}, err
	}

	payload := PaymentPayload{
		amount:         p.Amount,
		currency:       p.Currency,
		orderID:        p.OrderID,
		paymentTokenID: p.PaymentTokenID,
		description:    p.Description,
		redirectURL:    p.RedirectURL,
		successURL:     p.SuccessURL,
		cancelURL:      p.CancelURL,
		metadata:       copyStrings(p.Metadata),
		additionalData: copyAny(p.AdditionalData),
	}
	if p.Customer != nil {
		c := customerFrom(*p.Customer)
		payload.customer = &c
	}
	return payload, nil
}

func checkAmount(errs *fieldErrors, field string, amount decimal.Decimal, allowZero bool) {
	switch {
	case allowZero && amount.IsNegative():
		errs.add(field, field+" must not be negative")
	case !allowZero && !amount.IsPositive():
		errs.add(field, field+" must be greater than 0")
	}
}

func checkCurrency(errs *fieldErrors, field, code string) {
	if err := vo.ValidateCurrency(code); err != nil {
		errs.add(field, err.Error())
	}
}

func (p PaymentPayload) Amount() decimal.Decimal { return p.amount }
func (p PaymentPayload) Currency() string        { return p.currency }
func (p PaymentPayload) OrderID() string         { return p.orderID }
func (p PaymentPayload) PaymentTokenID() string  { return p.paymentTokenID }
func (p PaymentPayload) Description() string     { return p.description }
func (p PaymentPayload) RedirectURL() string     { return p.redirectURL }
func (p PaymentPayload) SuccessURL() string      { return p.successURL }
func (p PaymentPayload) CancelURL() string       { return p.cancelURL }

// Metadata returns a copy of the caller metadata.
func (p PaymentPayload) Metadata() map[string]string {
	return copyStrings(p.metadata)
}

func (p PaymentPayload) AdditionalData() map[string]any {
	return copyAny(p.additionalData)
}

// Customer returns the payer, if one was supplied.
func (p PaymentPayload) Customer() (Customer, bool) {
	if p.customer == nil {
		return Customer{}, false
	}
	return *p.customer, true
}

// Money returns amount and currency as a domain value.
func (p PaymentPayload) Money() vo.Money {
	m, _ := vo.NewMoney(p.amount, p.currency)
	return m
}

type SavePaymentMethodParams struct {
	Customer       CustomerParams    `json:"customer"`
	PaymentTokenID string            `json:"payment_token_id" validate:"required,max=255"`
	Currency       string            `json:"currency"`
	Amount         decimal.Decimal   `json:"amount"`
	SuccessURL     string            `json:"success_url" validate:"omitempty,url"`
	CancelURL      string            `json:"cancel_url" validate:"omitempty,url"`
	Metadata       map[string]string `json:"metadata"`

	RequiresRedirect bool `json:"-"`
}

// SavePaymentMethodPayload stores a payment method for later off-session
// charges; a non-zero amount asks for a pre-authorisation.
type SavePaymentMethodPayload struct {
	customer       Customer
	paymentTokenID string
	currency       string
	amount         decimal.Decimal
	successURL     string
	cancelURL      string
	metadata       map[string]string
}

func NewSavePaymentMethodPayload(p SavePaymentMethodParams) (SavePaymentMethodPayload, error) {
	var errs fieldErrors
	errs.addStruct(p)
	checkAmount(&errs, "amount", p.Amount, true)
	checkCurrency(&errs, "currency", p.Currency)
	if _, ok := p.Metadata[ReservedMetadataKey]; ok {
		errs.add("metadata.order_id", "metadata must not contain order_id")
	}
	if p.RequiresRedirect && (p.SuccessURL == "" || p.CancelURL == "") {
		if p.SuccessURL == "" {
			errs.add("success_url", "success_url is required for redirect payments")
		}
		if p.CancelURL == "" {
			errs.add("cancel_url", "cancel_url is required for redirect payments")
		}
	}
	if err := errs.err("Invalid save payment method payload"); err != nil {
		return SavePaymentMethodPayload{}, err
	}

	return SavePaymentMethodPayload{
		customer:       customerFrom(p.Customer),
		paymentTokenID: p.PaymentTokenID,
		currency:       p.Currency,
		amount:         p.Amount,
		successURL:     p.SuccessURL,
		cancelURL:      p.CancelURL,
		metadata:       copyStrings(p.Metadata),
	}, nil
}

func (p SavePaymentMethodPayload) Customer() Customer       { return p.customer }
func (p SavePaymentMethodPayload) PaymentTokenID() string   { return p.paymentTokenID }
func (p SavePaymentMethodPayload) Currency() string         { return p.currency }
func (p SavePaymentMethodPayload) Amount() decimal.Decimal  { return p.amount }
func (p SavePaymentMethodPayload) SuccessURL() string       { return p.successURL }
func (p SavePaymentMethodPayload) CancelURL() string        { return p.cancelURL }
func (p SavePaymentMethodPayload) IsPreAuthorisation() bool { return p.amount.IsPositive() }

func (p SavePaymentMethodPayload) Metadata() map[string]string {
	return copyStrings(p.metadata)
}

// FormField is one input or instruction line of a manual payment form.
type FormField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// PaymentForm is returned by manual gateways instead of a redirect.
type PaymentForm struct {
	Instructions string      `json:"instructions,omitempty"`
	Fields       []FormField `json:"fields"`
}

type PaymentResponseParams struct {
	IsRedirect            bool
	RedirectURL           string `validate:"omitempty,url"`
	TransactionID         string
	PreviousTransactionID string
	PaymentForm           *PaymentForm
	Raw                   map[string]any
}

// PaymentResponse is a gateway's answer to Charge or SavePaymentMethod.
type PaymentResponse struct {
	isRedirect            bool
	redirectURL           string
	transactionID         string
	previousTransactionID string
	paymentForm           *PaymentForm
	raw                   map[string]any
}

func NewPaymentResponse(p PaymentResponseParams) (*PaymentResponse, error) {
	var errs fieldErrors
	errs.addStruct(p)
	if p.IsRedirect && p.RedirectURL == "" {
		errs.add("redirect_url", "redirect_url is required for redirect responses")
	}
	if !p.IsRedirect && p.TransactionID == "" && p.PaymentForm == nil {
		errs.add("transaction_id", "transaction_id is required")
	}
	if err := errs.err("Invalid payment response"); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		isRedirect:            p.IsRedirect,
		redirectURL:           p.RedirectURL,
		transactionID:         p.TransactionID,
		previousTransactionID: p.PreviousTransactionID,
		paymentForm:           p.PaymentForm,
		raw:                   copyAny(p.Raw),
	}, nil
}

func (r *PaymentResponse) IsRedirect() bool              { return r.isRedirect }
func (r *PaymentResponse) RedirectURL() string           { return r.redirectURL }
func (r *PaymentResponse) TransactionID() string         { return r.transactionID }
func (r *PaymentResponse) PreviousTransactionID() string { return r.previousTransactionID }
func (r *PaymentResponse) PaymentForm() *PaymentForm     { return r.paymentForm }
func (r *PaymentResponse) Raw() map[string]any           { return copyAny(r.raw) }

func (r *PaymentResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsRedirect            bool         `json:"is_redirect"`
		RedirectURL           string       `json:"redirect_url,omitempty"`
		TransactionID         string       `json:"transaction_id,omitempty"`
		PreviousTransactionID string       `json:"previous_transaction_id,omitempty"`
		PaymentForm           *PaymentForm `json:"payment_form,omitempty"`
	}{r.isRedirect, r.redirectURL, r.transactionID, r.previousTransactionID, r.paymentForm})
}
