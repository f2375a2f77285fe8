package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshResult summarizes one forecaster run. Skipped holds one message per
// invoice group that could not be projected (bad stored dates); callers log
// them, the run itself never aborts.
type RefreshResult struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Skipped  []string `json:"skipped,omitempty"`
}

type ForecastService interface {
	// Refresh regenerates expected invoices from the current snapshot of
	// recurring invoices. Forecasts already present at their identity key
	// (client, customer_contract, expected_date) are left untouched.
	Refresh(ctx context.Context) (*RefreshResult, error)
	// RetireForInvoice deletes every forecast for the client whose contract
	// matches the new invoice's contract or is null. The match deliberately
	// ignores frequency and expected date; see the forecaster tests for the
	// documented consequences.
	RetireForInvoice(ctx context.Context, client string, contract *string) (int64, error)
	Acknowledge(ctx context.Context, id int) error
	// PurgeAcknowledged removes acknowledged forecasts older than the cutoff.
	PurgeAcknowledged(ctx context.Context, cutoff time.Time) (int64, error)
	ListExpected(ctx context.Context, includeAcknowledged bool) ([]*ExpectedInvoice, error)
}

type forecastService struct {
	pool     *pgxpool.Pool
	invoices InvoiceService
	now      func() time.Time
}

func NewForecastService(pool *pgxpool.Pool, invoices InvoiceService) ForecastService {
	return &forecastService{pool: pool, invoices: invoices, now: time.Now}
}

func (s *forecastService) Refresh(ctx context.Context) (*RefreshResult, error) {
	snapshot, err := s.invoices.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring invoices: %w", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	forecasts, skipped := BuildForecasts(snapshot, today)

	result := &RefreshResult{Skipped: skipped}
	for _, f := range forecasts {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO expected_invoices (client, customer_contract, invoice_type,
				frequency, expected_amount, currency, expected_date,
				last_invoice_number, last_invoice_date)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
			WHERE NOT EXISTS (
				SELECT 1 FROM expected_invoices
				WHERE client = $1
				  AND COALESCE(customer_contract, '') = COALESCE($2, '')
				  AND expected_date = $7
			)
		`, f.Client, f.CustomerContract, string(f.InvoiceType), string(f.Frequency),
			f.ExpectedAmount, f.Currency, f.ExpectedDate,
			f.LastInvoiceNumber, f.LastInvoiceDate)
		if err != nil {
			return nil, fmt.Errorf("failed to insert expected invoice for %s: %w", f.Client, err)
		}
		if tag.RowsAffected() > 0 {
			result.Created++
		} else {
			result.Existing++
		}
	}
	return result, nil
}

func (s *forecastService) RetireForInvoice(ctx context.Context, client string, contract *string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM expected_invoices
		WHERE client = $1
		  AND (customer_contract = $2 OR customer_contract IS NULL)
	`, client, contract)
	if err != nil {
		return 0, fmt.Errorf("failed to retire expected invoices for %s: %w", client, err)
	}
	return tag.RowsAffected(), nil
}

func (s *forecastService) Acknowledge(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE expected_invoices
		SET acknowledged = true, acknowledged_date = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge expected invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expected invoice %d not found", id)
	}
	return nil
}

func (s *forecastService) PurgeAcknowledged(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM expected_invoices
		WHERE acknowledged AND acknowledged_date < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge acknowledged forecasts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *forecastService) ListExpected(ctx context.Context, includeAcknowledged bool) ([]*ExpectedInvoice, error) {
	query := `
		SELECT id, client, customer_contract, invoice_type, frequency,
			expected_amount::text, currency, expected_date,
			last_invoice_number, last_invoice_date, acknowledged, acknowledged_date
		FROM expected_invoices`
	if !includeAcknowledged {
		query += ` WHERE NOT acknowledged`
	}
	query += ` ORDER BY expected_date, client`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expected invoices: %w", err)
	}
	defer rows.Close()

	var out []*ExpectedInvoice
	for rows.Next() {
		var e ExpectedInvoice
		if err := rows.Scan(&e.ID, &e.Client, &e.CustomerContract, &e.InvoiceType,
			&e.Frequency, &e.ExpectedAmount, &e.Currency, &e.ExpectedDate,
			&e.LastInvoiceNumber, &e.LastInvoiceDate, &e.Acknowledged,
			&e.AcknowledgedDate); err != nil {
			return nil, fmt.Errorf("failed to scan expected invoice: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
