package app

import (
	"invoice-tracker/internal/ai"
	"invoice-tracker/internal/core"
)

// IngestResult reports one processed document. Invoice is nil for dry runs.
type IngestResult struct {
	Fields           core.InvoiceFields `json:"fields"`
	Invoice          *core.Invoice      `json:"invoice,omitempty"`
	RetiredForecasts int64              `json:"retired_forecasts"`
}

type InvoiceResult struct {
	Invoice *core.Invoice `json:"invoice"`
}

type InvoiceListResult struct {
	Invoices []*core.Invoice `json:"invoices"`
}

type ExpectedInvoiceListResult struct {
	ExpectedInvoices []*core.ExpectedInvoice `json:"expected_invoices"`
}

type ForecastRefreshResult struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Skipped  []string `json:"skipped,omitempty"`
}

type AssistantResult struct {
	Answer *ai.Answer `json:"answer"`
}
