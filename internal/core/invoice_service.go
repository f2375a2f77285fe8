package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateInvoice is returned when an invoice number is already stored.
var ErrDuplicateInvoice = errors.New("invoice number already exists")

type InvoiceService interface {
	// CreateInvoice persists an extraction result. The duplicate-number
	// check and the insert run in one transaction serialized per invoice
	// number, so concurrent uploads of the same number cannot both pass.
	CreateInvoice(ctx context.Context, fields InvoiceFields) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceNumber string) (*Invoice, error)
	// ListInvoices returns invoices, optionally filtered by client.
	ListInvoices(ctx context.Context, client string) ([]*Invoice, error)
	// ListRecurring returns the full snapshot of non-adhoc invoices the
	// forecaster runs over.
	ListRecurring(ctx context.Context) ([]*Invoice, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

const invoiceColumns = `id, invoice_number, client, invoice_date, due_date,
	amount_due::text, currency, services, customer_contract, oracle_contract,
	po_number, invoice_type, frequency, uploaded_at`

func (s *invoiceService) CreateInvoice(ctx context.Context, fields InvoiceFields) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent uploads of the same invoice number for the
	// duration of this transaction.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, fields.InvoiceNumber); err != nil {
		return nil, fmt.Errorf("failed to take invoice-number lock: %w", err)
	}

	if fields.InvoiceNumber != "" {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM invoices WHERE invoice_number = $1)`,
			fields.InvoiceNumber,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate invoice: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("invoice %s: %w", fields.InvoiceNumber, ErrDuplicateInvoice)
		}
	}

	var inv Invoice
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, client, invoice_date, due_date,
			amount_due, currency, services, customer_contract, oracle_contract,
			po_number, invoice_type, frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+invoiceColumns,
		fields.InvoiceNumber,
		fields.Client,
		fields.InvoiceDate.Format(dateLayout),
		fields.DueDate.Format(dateLayout),
		fields.AmountDue.String(),
		fields.Currency,
		fields.Services,
		nullable(fields.CustomerContract),
		nullable(fields.OracleContract),
		nullable(fields.PONumber),
		string(fields.InvoiceType),
		string(fields.Frequency),
	).Scan(scanTargets(&inv)...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceNumber string) (*Invoice, error) {
	var inv Invoice
	err := s.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1`,
		invoiceNumber,
	).Scan(scanTargets(&inv)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("invoice %s not found", invoiceNumber)
		}
		return nil, fmt.Errorf("failed to read invoice: %w", err)
	}
	return &inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, client string) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY invoice_date DESC, id DESC`
	args := []any{}
	if client != "" {
		query = `SELECT ` + invoiceColumns + ` FROM invoices WHERE client = $1 ORDER BY invoice_date DESC, id DESC`
		args = append(args, client)
	}
	return s.queryInvoices(ctx, query, args...)
}

func (s *invoiceService) ListRecurring(ctx context.Context) ([]*Invoice, error) {
	return s.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE frequency <> $1 ORDER BY invoice_date, id`,
		string(FreqAdhoc),
	)
}

func (s *invoiceService) queryInvoices(ctx context.Context, query string, args ...any) ([]*Invoice, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(scanTargets(&inv)...); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// scanTargets returns the scan destinations matching invoiceColumns order.
func scanTargets(inv *Invoice) []any {
	return []any{
		&inv.ID, &inv.InvoiceNumber, &inv.Client, &inv.InvoiceDate, &inv.DueDate,
		&inv.AmountDue, &inv.Currency, &inv.Services, &inv.CustomerContract,
		&inv.OracleContract, &inv.PONumber, &inv.InvoiceType, &inv.Frequency,
		&inv.UploadedAt,
	}
}

// nullable maps empty optional fields to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
