package models

import "strings"

// Currency hint codes for a whole document. MIXED means at least two
// distinct currencies were seen in the same input.
const (
	CurrencyINR     = "INR"
	CurrencyUSD     = "USD"
	CurrencyEUR     = "EUR"
	CurrencyUnknown = "UNKNOWN"
	CurrencyMixed   = "MIXED"
)

// currencySymbols maps raw symbol spellings to canonical currency codes
var currencySymbols = map[string]string{
	"INR": CurrencyINR,
	"Rs":  CurrencyINR,
	"Rs.": CurrencyINR,
	"₹":   CurrencyINR,
	"$":   CurrencyUSD,
	"USD": CurrencyUSD,
	"€":   CurrencyEUR,
	"EUR": CurrencyEUR,
}

// NormalizeCurrencySymbol converts a raw currency indicator (symbol or code,
// any case) to its canonical code, or UNKNOWN if unrecognized.
func NormalizeCurrencySymbol(symbol string) string {
	if code, ok := currencySymbols[symbol]; ok {
		return code
	}
	// Spellings vary in case in OCR output ("rs", "RS.")
	for raw, code := range currencySymbols {
		if strings.EqualFold(raw, symbol) {
			return code
		}
	}
	return CurrencyUnknown
}
