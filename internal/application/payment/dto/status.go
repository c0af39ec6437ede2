package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
)

type PaymentStatusParams struct {
	Status        vo.PaymentStatus
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Raw           map[string]any
}

// PaymentStatus is the canonical answer to a status query.
type PaymentStatus struct {
	status        vo.PaymentStatus
	transactionID string
	amount        decimal.Decimal
	currency      string
	raw           map[string]any
}

func NewPaymentStatus(p PaymentStatusParams) (*PaymentStatus, error) {
	var errs fieldErrors
	if !p.Status.IsValid() {
		errs.add("status", "status must be one of [success failed pending refunded]")
	}
	if p.TransactionID == "" {
		errs.add("transaction_id", "transaction_id is required")
	}
	checkAmount(&errs, "amount", p.Amount, true)
	if p.Currency != "" {
		checkCurrency(&errs, "currency", p.Currency)
	}
	if err := errs.err("Invalid payment status"); err != nil {
		return nil, err
	}

	return &PaymentStatus{
		status:        p.Status,
		transactionID: p.TransactionID,
		amount:        p.Amount,
		currency:      p.Currency,
		raw:           copyAny(p.Raw),
	}, nil
}

func (s *PaymentStatus) Status() vo.PaymentStatus { return s.status }
func (s *PaymentStatus) TransactionID() string     { return s.transactionID }
func (s *PaymentStatus) Amount() decimal.Decimal   { return s.amount }
func (s *PaymentStatus) Currency() string          { return s.currency }
func (s *PaymentStatus) Raw() map[string]any       { return copyAny(s.raw) }

func (s *PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status        vo.PaymentStatus `json:"status"`
		TransactionID string           `json:"transaction_id"`
		Amount        decimal.Decimal  `json:"amount"`
		Currency      string           `json:"currency,omitempty"`
	}{s.status, s.transactionID, s.amount, s.currency})
}
