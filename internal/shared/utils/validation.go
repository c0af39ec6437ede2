package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fundhive/fundhive/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validator exposes the shared instance so packages can register custom tags.
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct validates s and returns a validation AppError whose Fields
// hold the JSON path of every failing field (e.g. "customer.email").
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !asValidationErrors(err, &validationErrors) {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	fields := make([]errors.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, errors.FieldError{
			Field:   fieldPath(fe),
			Message: getFieldErrorMessage(fe),
		})
	}
	return errors.NewFieldValidationError("Validation failed", fields...)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_with", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "iso4217":
		return fmt.Sprintf("%s must be a valid ISO 4217 currency code", field)
	case "uppercase":
		return fmt.Sprintf("%s must be uppercase", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "dive":
		return fmt.Sprintf("%s contains an invalid element", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
