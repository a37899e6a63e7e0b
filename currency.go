package paytracker

import (
	"fmt"
	"regexp"

	"github.com/Rhymond/go-money"
)

// DefaultReference is the reference currency used by the rate providers.
const DefaultReference = "USD"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// IsRecognized reports whether code is an uppercase ISO 4217 currency code
// known to the currency registry.
func IsRecognized(code string) bool {
	return ValidateCurrency(code) == nil
}

// ValidateCurrency checks that code is a recognized ISO 4217 currency code.
func ValidateCurrency(code string) error {
	if !currencyCode.MatchString(code) {
		return fmt.Errorf("invalid currency code format: %q, must be 3 uppercase letters", code)
	}
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency code: %q", code)
	}
	return nil
}
