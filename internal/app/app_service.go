package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoice-tracker/internal/ai"
	"invoice-tracker/internal/core"
)

// ackRetention is how long acknowledged forecasts are kept before the sweep
// removes them.
const ackRetention = 7 * 24 * time.Hour

// assistantContextLimit caps how many records feed the assistant prompt.
const assistantContextLimit = 50

type appService struct {
	pipeline  *core.Pipeline
	invoices  core.InvoiceService
	forecasts core.ForecastService
	agent     ai.AgentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pipeline *core.Pipeline,
	invoices core.InvoiceService,
	forecasts core.ForecastService,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		pipeline:  pipeline,
		invoices:  invoices,
		forecasts: forecasts,
		agent:     agent,
	}
}

// IngestDocument extracts fields from one document, stores the invoice, and
// retires expected invoices fulfilled by its arrival.
func (s *appService) IngestDocument(ctx context.Context, req IngestDocumentRequest) (*IngestResult, error) {
	fields := s.pipeline.Extract(req.DocumentText, req.OriginalFilename)
	result := &IngestResult{Fields: fields}
	if req.DryRun {
		return result, nil
	}

	inv, err := s.invoices.CreateInvoice(ctx, fields)
	if err != nil {
		return nil, err
	}
	result.Invoice = inv

	// A recurring arrival fulfills outstanding forecasts for the client and
	// contract. The match is coarse (no frequency or date filter).
	if fields.Frequency != core.FreqAdhoc {
		retired, err := s.forecasts.RetireForInvoice(ctx, inv.Client, inv.CustomerContract)
		if err != nil {
			return nil, fmt.Errorf("failed to retire forecasts: %w", err)
		}
		result.RetiredForecasts = retired
	}
	return result, nil
}

func (s *appService) ListInvoices(ctx context.Context, client string) (*InvoiceListResult, error) {
	invoices, err := s.invoices.ListInvoices(ctx, client)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) GetInvoice(ctx context.Context, invoiceNumber string) (*InvoiceResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListExpectedInvoices(ctx context.Context, includeAcknowledged bool) (*ExpectedInvoiceListResult, error) {
	expected, err := s.forecasts.ListExpected(ctx, includeAcknowledged)
	if err != nil {
		return nil, err
	}
	return &ExpectedInvoiceListResult{ExpectedInvoices: expected}, nil
}

func (s *appService) AcknowledgeExpectedInvoice(ctx context.Context, id int) error {
	return s.forecasts.Acknowledge(ctx, id)
}

func (s *appService) RefreshForecasts(ctx context.Context) (*ForecastRefreshResult, error) {
	res, err := s.forecasts.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &ForecastRefreshResult{
		Created:  res.Created,
		Existing: res.Existing,
		Skipped:  res.Skipped,
	}, nil
}

func (s *appService) PurgeAcknowledged(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-ackRetention)
	return s.forecasts.PurgeAcknowledged(ctx, cutoff)
}

// AskAssistant builds invoice and forecast summaries and hands the question
// to the agent. The agent sees only the formatted summaries, never the pool.
func (s *appService) AskAssistant(ctx context.Context, question string) (*AssistantResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("assistant is not configured; set OPENAI_API_KEY")
	}

	invoices, err := s.invoices.ListInvoices(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for assistant: %w", err)
	}
	expected, err := s.forecasts.ListExpected(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecasts for assistant: %w", err)
	}

	answer, err := s.agent.AnswerQuestion(ctx, question,
		formatInvoiceContext(invoices), formatForecastContext(expected))
	if err != nil {
		return nil, err
	}
	return &AssistantResult{Answer: answer}, nil
}

func formatInvoiceContext(invoices []*core.Invoice) string {
	if len(invoices) == 0 {
		return "(none)"
	}
	if len(invoices) > assistantContextLimit {
		invoices = invoices[:assistantContextLimit]
	}
	var lines []string
	for _, inv := range invoices {
		contract := ""
		if inv.CustomerContract != nil {
			contract = " contract=" + *inv.CustomerContract
		}
		lines = append(lines, fmt.Sprintf("- %s | %s | %s %s | dated %s due %s | %s/%s%s",
			inv.InvoiceNumber, inv.Client, inv.AmountDue, inv.Currency,
			inv.InvoiceDate, inv.DueDate, inv.InvoiceType, inv.Frequency, contract))
	}
	return strings.Join(lines, "\n")
}

func formatForecastContext(expected []*core.ExpectedInvoice) string {
	if len(expected) == 0 {
		return "(none)"
	}
	if len(expected) > assistantContextLimit {
		expected = expected[:assistantContextLimit]
	}
	var lines []string
	for _, e := range expected {
		status := "outstanding"
		if e.Acknowledged {
			status = "acknowledged"
		}
		lines = append(lines, fmt.Sprintf("- %s | expected %s | %s %s | %s/%s | from invoice %s | %s",
			e.Client, e.ExpectedDate, e.ExpectedAmount, e.Currency,
			e.InvoiceType, e.Frequency, e.LastInvoiceNumber, status))
	}
	return strings.Join(lines, "\n")
}
