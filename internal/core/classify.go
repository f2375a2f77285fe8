package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// typeRule is one entry in the ordered invoice-type keyword table. Rules are
// evaluated top to bottom; the first match wins.
type typeRule struct {
	tag   InvoiceType
	match func(s string) bool
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// typeRules encodes the classification priority as inspectable data.
// The managed-services rule sits above the subscription rule so a managed
// subscription is tagged MS, never Sub.
var typeRules = []typeRule{
	{TypeCreditMemo, func(s string) bool {
		return containsAny(s, "credit", "negative")
	}},
	{TypeManagedServices, func(s string) bool {
		return containsAny(s, "managed services", "managed/outsourcing services") ||
			(strings.Contains(s, "managed") && strings.Contains(s, "outsourcing")) ||
			(strings.Contains(s, "subscription") && strings.Contains(s, "managed"))
	}},
	{TypeMaintenance, func(s string) bool {
		return containsAny(s, "maintenance", "support", "annual maintenance") &&
			!strings.Contains(s, "managed")
	}},
	{TypeSubscription, func(s string) bool {
		return containsAny(s, "subscription", "license", "saas")
	}},
	{TypeHosting, func(s string) bool {
		return containsAny(s, "hosting", "cloud services", "infrastructure")
	}},
	{TypeHardware, func(s string) bool {
		return containsAny(s, "hardware", "equipment", "devices")
	}},
	{TypeThirdParty, func(s string) bool {
		return strings.Contains(s, "third party")
	}},
	{TypeProfessionalServices, func(s string) bool {
		return containsAny(s, "consulting", "professional services", "penetration testing")
	}},
}

var quarterToken = regexp.MustCompile(`\bq[1-4]\b`)

var (
	biAnnualMarkers  = []string{"bi-annual", "semi-annual", "6 month", "every 6 months"}
	triAnnualMarkers = []string{"tri-annual", "4 month", "every 4 months"}
)

// freqRules encodes the frequency priority. The annual rule is guarded
// against the bi-annual and tri-annual markers, which also contain "annual".
var freqRules = []struct {
	tag   Frequency
	match func(s string) bool
}{
	{FreqMonthly, func(s string) bool {
		return strings.Contains(s, "monthly")
	}},
	{FreqQuarterly, func(s string) bool {
		return containsAny(s, "quarterly", "quarter", "3 month", "every 3 months") ||
			quarterToken.MatchString(s)
	}},
	{FreqBiAnnual, func(s string) bool {
		return containsAny(s, biAnnualMarkers...)
	}},
	{FreqTriAnnual, func(s string) bool {
		return containsAny(s, triAnnualMarkers...)
	}},
	{FreqAnnual, func(s string) bool {
		if !containsAny(s, "annual", "yearly") {
			return false
		}
		return !containsAny(s, biAnnualMarkers...) && !containsAny(s, triAnnualMarkers...)
	}},
}

// Classify derives the invoice type and recurrence frequency from the service
// description and the signed amount. A negative amount forces CreditMemo
// regardless of the service text; the frequency is derived from the text
// alone, independent of the type. Pure function, no side effects.
func Classify(services string, amountDue decimal.Decimal) (InvoiceType, Frequency) {
	s := strings.ToLower(services)

	invoiceType := TypeProfessionalServices
	if amountDue.IsNegative() {
		invoiceType = TypeCreditMemo
	} else {
		for _, rule := range typeRules {
			if rule.match(s) {
				invoiceType = rule.tag
				break
			}
		}
	}

	frequency := FreqAdhoc
	for _, rule := range freqRules {
		if rule.match(s) {
			frequency = rule.tag
			break
		}
	}

	return invoiceType, frequency
}
