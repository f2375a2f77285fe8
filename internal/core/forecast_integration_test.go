package core_test

import (
	"context"
	"testing"
	"time"

	"invoice-tracker/internal/core"
)

func TestForecastService_RefreshIsIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)

	// Far enough in the past that the projection is always due.
	if _, err := invoices.CreateInvoice(ctx, testFields("INV-1", "Acme", date(2023, time.January, 15), core.FreqMonthly)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	first, err := forecasts.Refresh(ctx)
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if first.Created != 1 || first.Existing != 0 {
		t.Errorf("first refresh: created %d existing %d, want 1 and 0", first.Created, first.Existing)
	}

	second, err := forecasts.Refresh(ctx)
	if err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	if second.Created != 0 || second.Existing != 1 {
		t.Errorf("second refresh: created %d existing %d, want 0 and 1", second.Created, second.Existing)
	}

	expected, err := forecasts.ListExpected(ctx, false)
	if err != nil {
		t.Fatalf("ListExpected failed: %v", err)
	}
	if len(expected) != 1 {
		t.Fatalf("expected exactly 1 forecast, got %d", len(expected))
	}
	if expected[0].ExpectedDate != "2023-02-15" {
		t.Errorf("ExpectedDate = %q, want 2023-02-15", expected[0].ExpectedDate)
	}
	if expected[0].LastInvoiceNumber != "INV-1" {
		t.Errorf("LastInvoiceNumber = %q, want INV-1", expected[0].LastInvoiceNumber)
	}
}

func TestForecastService_SkipReportedForBadStoredDate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)

	// Legacy rows can carry malformed date text; the dates columns are TEXT
	// so the forecaster has to tolerate them.
	_, err := pool.Exec(ctx, `
		INSERT INTO invoices (invoice_number, client, invoice_date, due_date,
			amount_due, currency, services, invoice_type, frequency)
		VALUES ('INV-LEGACY', 'Acme', '23/08/2024', '22/09/2024',
			1000.00, 'USD', 'Monthly managed services', 'MS', 'monthly')
	`)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := forecasts.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("created %d forecasts from a malformed row, want 0", result.Created)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("expected 1 skip report, got %v", result.Skipped)
	}
}

// RetireForInvoice matches on client and (contract OR null contract) only.
// A monthly arrival therefore retires the client's quarterly forecasts too.
// That behavior is relied upon by the ingest flow; this test pins it down.
func TestForecastService_RetireIsCoarse(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)

	seedForecast := func(client string, contract *string, freq core.Frequency, expectedDate string) {
		t.Helper()
		_, err := pool.Exec(ctx, `
			INSERT INTO expected_invoices (client, customer_contract, invoice_type,
				frequency, expected_amount, currency, expected_date,
				last_invoice_number, last_invoice_date)
			VALUES ($1, $2, 'MS', $3, 1000.00, 'USD', $4, 'INV-X', '2023-01-01')
		`, client, contract, string(freq), expectedDate)
		if err != nil {
			t.Fatalf("seed forecast failed: %v", err)
		}
	}

	seedForecast("Acme", strPtr("CC-1"), core.FreqMonthly, "2023-02-01")
	seedForecast("Acme", strPtr("CC-1"), core.FreqQuarterly, "2023-04-01")
	seedForecast("Acme", nil, core.FreqMonthly, "2023-02-01")
	seedForecast("Acme", strPtr("CC-2"), core.FreqMonthly, "2023-02-01")
	seedForecast("Globex", strPtr("CC-1"), core.FreqMonthly, "2023-02-01")

	retired, err := forecasts.RetireForInvoice(ctx, "Acme", strPtr("CC-1"))
	if err != nil {
		t.Fatalf("retire failed: %v", err)
	}
	// Both CC-1 rows regardless of frequency, plus the null-contract row.
	if retired != 3 {
		t.Errorf("retired %d forecasts, want 3", retired)
	}

	remaining, err := forecasts.ListExpected(ctx, true)
	if err != nil {
		t.Fatalf("ListExpected failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 surviving forecasts, got %d", len(remaining))
	}
	for _, e := range remaining {
		acmeOther := e.Client == "Acme" && e.CustomerContract != nil && *e.CustomerContract == "CC-2"
		globex := e.Client == "Globex"
		if !acmeOther && !globex {
			t.Errorf("unexpected survivor: %+v", e)
		}
	}

	// A nil contract retires only null-contract rows.
	retired, err = forecasts.RetireForInvoice(ctx, "Globex", nil)
	if err != nil {
		t.Fatalf("retire with nil contract failed: %v", err)
	}
	if retired != 0 {
		t.Errorf("nil contract retired %d rows with contracts, want 0", retired)
	}
}

func TestForecastService_AcknowledgeAndPurge(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)

	if _, err := invoices.CreateInvoice(ctx, testFields("INV-1", "Acme", date(2023, time.January, 15), core.FreqMonthly)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := forecasts.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	listed, err := forecasts.ListExpected(ctx, false)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected 1 forecast, got %d (err %v)", len(listed), err)
	}
	id := listed[0].ID

	if err := forecasts.Acknowledge(ctx, id); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if err := forecasts.Acknowledge(ctx, id+999); err == nil {
		t.Error("expected error acknowledging a missing forecast")
	}

	// Acknowledged rows drop out of the default listing but remain visible
	// when asked for.
	unacked, err := forecasts.ListExpected(ctx, false)
	if err != nil {
		t.Fatalf("ListExpected failed: %v", err)
	}
	if len(unacked) != 0 {
		t.Errorf("acknowledged forecast still listed: %d rows", len(unacked))
	}
	all, err := forecasts.ListExpected(ctx, true)
	if err != nil {
		t.Fatalf("ListExpected(true) failed: %v", err)
	}
	if len(all) != 1 || !all[0].Acknowledged {
		t.Errorf("expected 1 acknowledged row, got %+v", all)
	}

	// A cutoff before the acknowledgement leaves the row in place.
	purged, err := forecasts.PurgeAcknowledged(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 0 {
		t.Errorf("purged %d rows with an old cutoff, want 0", purged)
	}

	// A cutoff after the acknowledgement removes it.
	purged, err = forecasts.PurgeAcknowledged(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d rows, want 1", purged)
	}
}
