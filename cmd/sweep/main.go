package main

import (
	"context"
	"log"

	"invoice-tracker/internal/app"
	"invoice-tracker/internal/core"
	"invoice-tracker/internal/db"

	"github.com/joho/godotenv"
)

// sweep is intended to run on a schedule. It rebuilds the expected invoice
// set from current recurring history and drops acknowledged rows past the
// retention window.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)
	svc := app.NewAppService(core.NewPipeline(), invoices, forecasts, nil)

	refresh, err := svc.RefreshForecasts(ctx)
	if err != nil {
		log.Fatalf("refresh: %v", err)
	}
	log.Printf("forecasts: %d created, %d existing, %d skipped", refresh.Created, refresh.Existing, len(refresh.Skipped))
	for _, reason := range refresh.Skipped {
		log.Printf("skipped: %s", reason)
	}

	purged, err := svc.PurgeAcknowledged(ctx)
	if err != nil {
		log.Fatalf("purge: %v", err)
	}
	log.Printf("purged %d acknowledged forecasts", purged)
}
