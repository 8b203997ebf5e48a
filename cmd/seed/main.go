// seed inserts a handful of demo users into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/monikerhq/moniker/internal/infrastructure/postgres"
)

type userSpec struct {
	email     string
	moniker   string
	activated bool
}

var users = []userSpec{
	{"ada@example.com", "ada", true},
	{"grace@example.com", "grace", true},
	{"linus@example.com", "linus", true},
	{"rob@example.com", "rob", true},
	{"ken@example.com", "ken", true},

	// Registered but never followed the activation link
	{"pending-1@example.com", "pending-one", false},
	{"pending-2@example.com", "pending-two", false},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// Upsert users, idempotent across re-runs.
	var inserted, skipped int
	for _, spec := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (email, moniker, activated_at)
			VALUES ($1, $2, CASE WHEN $3 THEN NOW() ELSE NULL END)
			ON CONFLICT (email) DO NOTHING
			RETURNING id`,
			spec.email, spec.moniker, spec.activated,
		).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			skipped++
		case err != nil:
			log.Fatalf("insert user %s: %v", spec.email, err)
		default:
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — request a login link:")
	fmt.Println()
	fmt.Println("    open http://localhost:8080/login and submit ada@example.com")
	fmt.Println()
	fmt.Println("  Step 2 — the link is printed in the server log (ENV=local), follow it:")
	fmt.Println()
	fmt.Println("    http://localhost:8080/login/TOKEN")
	fmt.Println()
	fmt.Println("  Step 3 — browse:")
	fmt.Println()
	fmt.Println("    /users        directory, 50 per page")
	fmt.Println("    /users/ID     profile, with the owner badge on your own")
	fmt.Println("    /profile      your dashboard")
}
