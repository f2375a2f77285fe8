package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"invoice-tracker/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "ingest", "ing", "i":
		if len(args) < 2 {
			log.Fatal("Usage: ingest <directory> [--dry-run]")
		}
		dryRun := len(args) > 2 && args[2] == "--dry-run"
		IngestDirectory(ctx, svc, args[1], dryRun)

	case "expected", "exp", "e":
		result, err := svc.ListExpectedInvoices(ctx, false)
		if err != nil {
			log.Fatalf("Failed to list expected invoices: %v", err)
		}
		printExpected(result)

	case "refresh", "ref", "r":
		result, err := svc.RefreshForecasts(ctx)
		if err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		fmt.Printf("Forecasts refreshed: %d created, %d existing, %d skipped.\n",
			result.Created, result.Existing, len(result.Skipped))

	case "ask", "a":
		if len(args) < 2 {
			log.Fatal("Usage: ask \"<question>\"")
		}
		result, err := svc.AskAssistant(ctx, args[1])
		if err != nil {
			log.Fatalf("Assistant error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Answer)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: ingest, expected, refresh, ask", args[0])
	}
}

// IngestDirectory feeds every .txt file under dir through the pipeline.
// A file that fails to ingest is reported and skipped; the batch continues,
// and forecasts are refreshed once at the end.
func IngestDirectory(ctx context.Context, svc app.ApplicationService, dir string, dryRun bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Failed to read directory %s: %v", dir, err)
	}

	var ingested, failed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		text, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "SKIP %s: %v\n", entry.Name(), err)
			failed++
			continue
		}
		result, err := svc.IngestDocument(ctx, app.IngestDocumentRequest{
			DocumentText:     string(text),
			OriginalFilename: entry.Name(),
			DryRun:           dryRun,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "SKIP %s: %v\n", entry.Name(), err)
			failed++
			continue
		}
		fmt.Printf("OK   %s: %s / %s / %s\n",
			entry.Name(), result.Fields.Client, result.Fields.InvoiceNumber, result.Fields.InvoiceType)
		ingested++
	}

	fmt.Printf("Ingested %d, skipped %d.\n", ingested, failed)
	if dryRun || ingested == 0 {
		return
	}

	refresh, err := svc.RefreshForecasts(ctx)
	if err != nil {
		log.Fatalf("Refresh after ingest failed: %v", err)
	}
	fmt.Printf("Forecasts refreshed: %d created, %d existing, %d skipped.\n",
		refresh.Created, refresh.Existing, len(refresh.Skipped))
}

func printExpected(result *app.ExpectedInvoiceListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-28s %-12s %-10s %12s  %s\n", "CLIENT", "EXPECTED", "FREQ", "AMOUNT", "CONTRACT")
	fmt.Println(strings.Repeat("-", 78))
	for _, e := range result.ExpectedInvoices {
		contract := ""
		if e.CustomerContract != nil {
			contract = *e.CustomerContract
		}
		fmt.Printf("  %-28s %-12s %-10s %12s  %s\n",
			e.Client, e.ExpectedDate, e.Frequency, e.ExpectedAmount, contract)
	}
	fmt.Println(strings.Repeat("=", 78))
}
