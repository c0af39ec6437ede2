package dto

import (
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type CustomerParams struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"max=200"`
	Phone  string `json:"phone" validate:"max=40"`
}

// Customer identifies the payer towards a processor.
type Customer struct {
	userID string
	email  string
	name   string
	phone  string
}

func NewCustomer(p CustomerParams) (Customer, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return Customer{}, prefixFields(err, "customer")
	}
	return customerFrom(p), nil
}

func customerFrom(p CustomerParams) Customer {
	return Customer{userID: p.UserID, email: p.Email, name: p.Name, phone: p.Phone}
}

func (c Customer) UserID() string { return c.userID }
func (c Customer) Email() string  { return c.email }
func (c Customer) Name() string   { return c.name }
func (c Customer) Phone() string  { return c.phone }

func (c Customer) IsZero() bool {
	return c.userID == "" && c.email == ""
}

// prefixFields re-roots field paths of a validation error under prefix.
func prefixFields(err error, prefix string) error {
	appErr := errors.GetAppError(err)
	if appErr == nil || len(appErr.Fields) == 0 {
		return err
	}
	fields := make([]errors.FieldError, len(appErr.Fields))
	for i, f := range appErr.Fields {
		fields[i] = errors.FieldError{Field: prefix + "." + f.Field, Message: f.Message}
	}
	return errors.NewFieldValidationError(appErr.Message, fields...)
}
