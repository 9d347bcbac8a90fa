package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nineaRegex   = regexp.MustCompile(`^\d{9,12}$`)
	controlRegex = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// Currencies accepted for issuing companies
var Currencies = []string{"FCFA", "EUR", "USD"}

// ValidateNINEA validates a Senegalese company identifier (9 to 12 digits)
func ValidateNINEA(ninea string) error {
	if !nineaRegex.MatchString(ninea) {
		return fmt.Errorf("NINEA must contain 9 to 12 digits: %q", ninea)
	}
	return nil
}

// ValidateCurrency checks the currency against Currencies
func ValidateCurrency(currency string) error {
	for _, c := range Currencies {
		if currency == c {
			return nil
		}
	}
	return fmt.Errorf("unsupported currency %q, expected one of %s", currency, strings.Join(Currencies, ", "))
}

// SanitizeString removes control characters, keeping tabs and newlines
func SanitizeString(s string) string {
	return strings.TrimSpace(controlRegex.ReplaceAllString(s, ""))
}
