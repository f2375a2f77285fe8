// Applies a single SQL file out of band, without recording it in
// schema_migrations. Meant for ad-hoc data patches; regular schema changes go
// through cmd/verify-db.
//
// Usage: go run migrations/apply_patch.go <file.sql>
package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: apply_patch <file.sql>")
	}
	path := os.Args[1]

	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
		log.Fatalf("Patch %s failed: %v", path, err)
	}
	log.Printf("Patch %s applied.", path)
}
