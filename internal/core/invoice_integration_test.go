package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"invoice-tracker/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `TRUNCATE TABLE invoices, expected_invoices RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

func testFields(number, client string, invoiceDate time.Time, freq core.Frequency) core.InvoiceFields {
	return core.InvoiceFields{
		InvoiceNumber: number,
		Client:        client,
		InvoiceDate:   invoiceDate,
		DueDate:       invoiceDate.AddDate(0, 0, 30),
		AmountDue:     decimal.RequireFromString("1000.00"),
		Currency:      "USD",
		Services:      "Monthly managed services",
		InvoiceType:   core.TypeManagedServices,
		Frequency:     freq,
	}
}

func TestInvoiceService_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	fields := testFields("INV-100", "Acme", date(2024, time.August, 23), core.FreqMonthly)
	fields.CustomerContract = "CC-1"

	created, err := svc.CreateInvoice(ctx, fields)
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a generated ID")
	}
	if created.InvoiceDate != "2024-08-23" {
		t.Errorf("InvoiceDate stored as %q, want 2024-08-23", created.InvoiceDate)
	}
	if created.CustomerContract == nil || *created.CustomerContract != "CC-1" {
		t.Errorf("CustomerContract = %v, want CC-1", created.CustomerContract)
	}

	got, err := svc.GetInvoice(ctx, "INV-100")
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if got.Client != "Acme" || got.AmountDue != "1000.00" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := svc.GetInvoice(ctx, "INV-MISSING"); err == nil {
		t.Error("expected error for missing invoice")
	}
}

func TestInvoiceService_DuplicateNumberRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	if _, err := svc.CreateInvoice(ctx, testFields("INV-200", "Acme", date(2024, time.August, 1), core.FreqAdhoc)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateInvoice(ctx, testFields("INV-200", "Globex", date(2024, time.September, 1), core.FreqAdhoc))
	if !errors.Is(err, core.ErrDuplicateInvoice) {
		t.Errorf("expected ErrDuplicateInvoice, got %v", err)
	}
}

// Concurrent uploads of the same invoice number: exactly one must win. The
// advisory lock inside CreateInvoice serializes the check-then-insert.
func TestInvoiceService_ConcurrentDuplicates(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateInvoice(ctx, testFields("INV-300", "Acme", date(2024, time.August, 1), core.FreqAdhoc))
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var successes, duplicates int
	for err := range errCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, core.ErrDuplicateInvoice):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != attempts-1 {
		t.Errorf("got %d successes and %d duplicates, want 1 and %d", successes, duplicates, attempts-1)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM invoices WHERE invoice_number = 'INV-300'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 stored row, got %d", count)
	}
}

// Invoices without a number are exempt from the duplicate check; several may
// coexist.
func TestInvoiceService_EmptyNumberNotDeduplicated(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateInvoice(ctx, testFields("", "Acme", date(2024, time.August, 1), core.FreqAdhoc)); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM invoices WHERE invoice_number = ''").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 numberless rows, got %d", count)
	}
}

func TestInvoiceService_Listing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewInvoiceService(pool)
	ctx := context.Background()

	seed := []core.InvoiceFields{
		testFields("INV-1", "Acme", date(2024, time.August, 1), core.FreqMonthly),
		testFields("INV-2", "Acme", date(2024, time.September, 1), core.FreqAdhoc),
		testFields("INV-3", "Globex", date(2024, time.July, 1), core.FreqQuarterly),
	}
	for _, f := range seed {
		if _, err := svc.CreateInvoice(ctx, f); err != nil {
			t.Fatalf("seed %s failed: %v", f.InvoiceNumber, err)
		}
	}

	all, err := svc.ListInvoices(ctx, "")
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 invoices, got %d", len(all))
	}

	acme, err := svc.ListInvoices(ctx, "Acme")
	if err != nil {
		t.Fatalf("ListInvoices(Acme) failed: %v", err)
	}
	if len(acme) != 2 {
		t.Errorf("expected 2 Acme invoices, got %d", len(acme))
	}
	// Newest first.
	if acme[0].InvoiceNumber != "INV-2" {
		t.Errorf("expected INV-2 first, got %s", acme[0].InvoiceNumber)
	}

	recurring, err := svc.ListRecurring(ctx)
	if err != nil {
		t.Fatalf("ListRecurring failed: %v", err)
	}
	if len(recurring) != 2 {
		t.Errorf("expected 2 recurring invoices, got %d", len(recurring))
	}
	for _, inv := range recurring {
		if inv.Frequency == core.FreqAdhoc {
			t.Errorf("adhoc invoice %s leaked into recurring snapshot", inv.InvoiceNumber)
		}
	}
}
