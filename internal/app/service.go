package app

import (
	"context"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from the extraction and forecasting logic.
// Implementations must contain no display logic of any kind.
type ApplicationService interface {
	// IngestDocument runs the extraction pipeline over one decoded document
	// and, unless the request is a dry run, stores the resulting invoice and
	// retires matching expected invoices. Forecast regeneration is a
	// separate step (RefreshForecasts) so batches refresh once at the end.
	IngestDocument(ctx context.Context, req IngestDocumentRequest) (*IngestResult, error)

	// ListInvoices returns stored invoices, optionally filtered by client.
	ListInvoices(ctx context.Context, client string) (*InvoiceListResult, error)

	// GetInvoice returns a single invoice by its invoice number.
	GetInvoice(ctx context.Context, invoiceNumber string) (*InvoiceResult, error)

	// ListExpectedInvoices returns forecast records ordered by expected
	// date. Acknowledged rows are excluded unless includeAcknowledged is set.
	ListExpectedInvoices(ctx context.Context, includeAcknowledged bool) (*ExpectedInvoiceListResult, error)

	// AcknowledgeExpectedInvoice marks a forecast as seen; acknowledged
	// forecasts are purged after the retention window.
	AcknowledgeExpectedInvoice(ctx context.Context, id int) error

	// RefreshForecasts regenerates expected invoices from the current
	// invoice snapshot. Safe to run repeatedly; existing forecasts at the
	// same identity key are left untouched.
	RefreshForecasts(ctx context.Context) (*ForecastRefreshResult, error)

	// PurgeAcknowledged deletes acknowledged forecasts older than the
	// retention window and returns the number removed.
	PurgeAcknowledged(ctx context.Context) (int64, error)

	// AskAssistant answers a natural-language question about the ledger.
	AskAssistant(ctx context.Context, question string) (*AssistantResult, error)
}
