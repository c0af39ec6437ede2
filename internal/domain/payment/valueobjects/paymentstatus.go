package valueobjects

// PaymentStatus is the canonical processor-side status every gateway maps into.
type PaymentStatus string

const (
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusPending, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the processor will not move the payment further on its own.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

func (s PaymentStatus) String() string {
	return string(s)
}
