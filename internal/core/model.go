package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType is the short classification tag summarizing what an invoice bills for.
type InvoiceType string

const (
	TypeProfessionalServices InvoiceType = "PS"
	TypeMaintenance          InvoiceType = "Maint"
	TypeSubscription         InvoiceType = "Sub"
	TypeHosting              InvoiceType = "Hosting"
	TypeManagedServices      InvoiceType = "MS"
	TypeHardware             InvoiceType = "HW"
	TypeThirdParty           InvoiceType = "3PP"
	TypeCreditMemo           InvoiceType = "CreditMemo"
)

// Frequency is the recurrence cadence inferred for an invoice's underlying service.
// Adhoc means non-recurring; the forecaster ignores adhoc invoices entirely.
type Frequency string

const (
	FreqAdhoc     Frequency = "adhoc"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqBiAnnual  Frequency = "bi-annual"
	FreqTriAnnual Frequency = "tri-annual"
	FreqAnnual    Frequency = "annual"
)

// SupportedCurrencies is the closed set of ISO codes the extractor recognizes.
// Anything else falls back to USD.
var SupportedCurrencies = []string{"USD", "AUD", "EUR", "GBP", "SGD"}

const (
	// UnknownClient is the sentinel client name when every extraction strategy fails.
	UnknownClient = "Unknown Client"
	// NoServiceDescription is the sentinel when no usable service text is found.
	NoServiceDescription = "No service description found"
	// DefaultCurrency is assumed when no currency signal is present in the document.
	DefaultCurrency = "USD"
)

// InvoiceFields is the complete extraction result for one document.
// Every field has a defined default; the pipeline always returns a storable
// record even for a garbled or near-empty input.
type InvoiceFields struct {
	InvoiceNumber    string          `json:"invoice_number"`
	Client           string          `json:"client"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	DueDate          time.Time       `json:"due_date"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Currency         string          `json:"currency"`
	Services         string          `json:"services"`
	CustomerContract string          `json:"customer_contract,omitempty"`
	OracleContract   string          `json:"oracle_contract,omitempty"`
	PONumber         string          `json:"po_number,omitempty"`
	InvoiceType      InvoiceType     `json:"invoice_type"`
	Frequency        Frequency       `json:"frequency"`
}

// Invoice is the persisted invoice record. Dates are stored as YYYY-MM-DD
// strings and the amount as a decimal string, matching the column types; the
// forecaster parses them and skips records that fail to parse.
type Invoice struct {
	ID               int         `json:"id"`
	InvoiceNumber    string      `json:"invoice_number"`
	Client           string      `json:"client"`
	InvoiceDate      string      `json:"invoice_date"`
	DueDate          string      `json:"due_date"`
	AmountDue        string      `json:"amount_due"`
	Currency         string      `json:"currency"`
	Services         string      `json:"services"`
	CustomerContract *string     `json:"customer_contract,omitempty"`
	OracleContract   *string     `json:"oracle_contract,omitempty"`
	PONumber         *string     `json:"po_number,omitempty"`
	InvoiceType      InvoiceType `json:"invoice_type"`
	Frequency        Frequency   `json:"frequency"`
	UploadedAt       time.Time   `json:"uploaded_at"`
}

// ExpectedInvoice is a forecast record for a recurring obligation believed to
// be due but not yet matched by an actual invoice. Identity key:
// (client, customer_contract, expected_date).
type ExpectedInvoice struct {
	ID                int         `json:"id"`
	Client            string      `json:"client"`
	CustomerContract  *string     `json:"customer_contract,omitempty"`
	InvoiceType       InvoiceType `json:"invoice_type"`
	Frequency         Frequency   `json:"frequency"`
	ExpectedAmount    string      `json:"expected_amount"`
	Currency          string      `json:"currency"`
	ExpectedDate      string      `json:"expected_date"`
	LastInvoiceNumber string      `json:"last_invoice_number"`
	LastInvoiceDate   string      `json:"last_invoice_date"`
	Acknowledged      bool        `json:"acknowledged"`
	AcknowledgedDate  *time.Time  `json:"acknowledged_date,omitempty"`
}

// ContractOrNone returns the customer contract or "none" for grouping.
func (inv *Invoice) ContractOrNone() string {
	if inv.CustomerContract == nil || *inv.CustomerContract == "" {
		return "none"
	}
	return *inv.CustomerContract
}
