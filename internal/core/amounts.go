package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns are tried in order from most to least specific; the first
// pattern that matches anywhere in the text wins. Each pattern must match the
// full monetary substring so the sign rule can inspect it.
var amountPatterns = []*regexp.Regexp{
	// Explicitly labelled totals. The leading boundary keeps "Subtotal"
	// line items from binding as the document total.
	regexp.MustCompile(`(?i)\b(?:invoice\s+total|amount\s+due|balance\s+due|total)\b\s*:?\s*\(?\s*-?\s*[$€£]?\s*[0-9][0-9,]*(?:\.[0-9]+)?\s*\)?`),
	// Bare parenthesized or signed numbers.
	regexp.MustCompile(`\(\s*[$€£]?\s*[0-9][0-9,]*(?:\.[0-9]+)?\s*\)|-\s*[$€£]?\s*[0-9][0-9,]*(?:\.[0-9]+)?`),
	// Any dollar-prefixed number.
	regexp.MustCompile(`\$\s*[0-9][0-9,]*(?:\.[0-9]+)?`),
}

var amountDigits = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ResolveAmount locates a monetary total in free text and determines its sign.
// A match is negative when it contains a literal minus sign or is wrapped in
// parentheses (accounting notation). Returns zero when nothing matches;
// callers must treat zero as "unknown", not as a zero-value invoice.
func ResolveAmount(text string) decimal.Decimal {
	for _, p := range amountPatterns {
		match := p.FindString(text)
		if match == "" {
			continue
		}
		numeric := amountDigits.FindString(match)
		if numeric == "" {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(numeric, ",", ""))
		if err != nil {
			continue
		}
		if strings.Contains(match, "-") || strings.Contains(match, "(") {
			amount = amount.Neg()
		}
		return amount
	}
	return decimal.Zero
}
