package dto

import (
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

// fieldErrors collects struct-tag and hand-written checks into one
// validation error.
type fieldErrors []errors.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, errors.FieldError{Field: field, Message: message})
}

func (f *fieldErrors) addStruct(s any) {
	err := utils.ValidateStruct(s)
	if err == nil {
		return
	}
	if appErr := errors.GetAppError(err); appErr != nil && len(appErr.Fields) > 0 {
		*f = append(*f, appErr.Fields...)
		return
	}
	f.add("", err.Error())
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return errors.NewFieldValidationError(message, f...)
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAny(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
