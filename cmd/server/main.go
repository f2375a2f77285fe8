package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "invoice-tracker/internal/adapters/web"
	"invoice-tracker/internal/ai"
	"invoice-tracker/internal/app"
	"invoice-tracker/internal/core"
	"invoice-tracker/internal/db"

	"github.com/joho/godotenv"
)

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
	pipeline := core.NewPipeline()

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; assistant endpoint disabled")
	}

	svc := app.NewAppService(pipeline, invoices, forecasts, agent)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
