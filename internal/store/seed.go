// Seed populates a store with demo data for local development.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/KevinAshley/webparts/internal/forms"
)

// SeedDemoData creates a demo admin, a regular account, and a handful
// of todo items. Idempotent: an already-seeded database is left alone.
func (s *Store) SeedDemoData(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		log.Println("users already exist, skipping")
		return nil
	}

	admin, err := s.Signup(ctx, "Ada Admin", "admin@example.com", "admin-password")
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	if err := s.setAdmin(ctx, admin.ID, true); err != nil {
		return fmt.Errorf("promoting admin: %w", err)
	}

	demo, err := s.Signup(ctx, "Dana Demo", "demo@example.com", "demo-password")
	if err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}

	todos := s.Todos(demo.ID)
	for _, item := range []struct {
		name string
		done bool
	}{
		{"Water the plants", true},
		{"Read the mail", true},
		{"Fix the leaky faucet", false},
		{"Plan the weekend trip", false},
		{"Renew the library books", false},
	} {
		out := todos.Create(ctx, forms.Values{"name": item.name, "completed": item.done})
		if !out.Success {
			return fmt.Errorf("creating todo %q: %s", item.name, out.ErrorMessage)
		}
	}

	log.Printf("created users %q and %q with demo todos", admin.Email, demo.Email)
	return nil
}
