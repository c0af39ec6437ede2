package valueobjects

import (
	"fmt"
	"regexp"

	"golang.org/x/text/currency"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency accepts an uppercase three-letter ISO 4217 code.
func ValidateCurrency(code string) error {
	if !currencyPattern.MatchString(code) {
		return fmt.Errorf("currency %q must be a 3-letter uppercase ISO 4217 code", code)
	}
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Errorf("currency %q is not a known ISO 4217 code", code)
	}
	return nil
}

// MinorUnitScale is the number of decimal places of the currency's minor
// unit (2 for USD, 0 for JPY). Unknown codes fall back to 2.
func MinorUnitScale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}
