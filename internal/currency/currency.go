// Package currency converts between the platform's integer minor-unit
// amounts (paise) and the gateway's decimal major-unit amounts (rupees).
package currency

import "strings"

// DefaultCurrency is used when the platform supplies no currency code.
const DefaultCurrency = "INR"

// ToGatewayAmount converts a minor-unit amount (e.g. 1000 paise) into the
// major-unit decimal the gateway's order_amount field expects (10.00).
// The platform always stores amounts in the smallest unit, so the division
// is unconditional regardless of currency.
func ToGatewayAmount(minor int64) float64 {
	return float64(minor) / 100
}

// NormalizeCurrency uppercases an ISO 4217 code and falls back to
// DefaultCurrency when the code is absent or blank.
func NormalizeCurrency(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultCurrency
	}
	return strings.ToUpper(code)
}
