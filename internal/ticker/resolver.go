// Package ticker maps company names to market-data symbols.
package ticker

import "strings"

// companyTickers is never written after init.
var companyTickers = map[string]string{
	"apple":       "AAPL",
	"google":      "GOOGL",
	"alphabet":    "GOOGL",
	"openai":      "MSFT", // not listed; Microsoft is its controlling public investor
	"tesla":       "TSLA",
	"tesla, inc.": "TSLA",
	"bmw":         "BMW.DE", // Xetra listing
	"ford":        "F",
	"microsoft":   "MSFT",
	"amazon":      "AMZN",
	"meta":        "META",
	"nvidia":      "NVDA",
	"netflix":     "NFLX",
}

// Resolve lower-cases name and looks it up exactly; surrounding whitespace is
// not trimmed. ok is false for unknown companies.
func Resolve(name string) (symbol string, ok bool) {
	symbol, ok = companyTickers[strings.ToLower(name)]
	return symbol, ok
}

// Known returns a copy of the lookup table.
func Known() map[string]string {
	out := make(map[string]string, len(companyTickers))
	for name, symbol := range companyTickers {
		out[name] = symbol
	}
	return out
}
