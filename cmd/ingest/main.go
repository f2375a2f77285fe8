package main

import (
	"context"
	"log"
	"os"

	cliAdapter "invoice-tracker/internal/adapters/cli"
	"invoice-tracker/internal/ai"
	"invoice-tracker/internal/app"
	"invoice-tracker/internal/core"
	"invoice-tracker/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: ingest <command> [args]\nAvailable: ingest, expected, refresh, ask")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	invoices := core.NewInvoiceService(pool)
	forecasts := core.NewForecastService(pool, invoices)
	pipeline := core.NewPipeline()

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	}

	svc := app.NewAppService(pipeline, invoices, forecasts, agent)
	cliAdapter.Run(ctx, svc, os.Args[1:])
}
