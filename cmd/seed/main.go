// cmd/seed populates the database with demo accounts and todo items.
package main

import (
	"context"
	"flag"
	"log"

	_ "modernc.org/sqlite"

	"github.com/KevinAshley/webparts/internal/config"
	"github.com/KevinAshley/webparts/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("seed: ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer st.Close()

	if err := st.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrapping schema: %v", err)
	}
	if err := st.SeedDemoData(ctx); err != nil {
		log.Fatalf("seeding: %v", err)
	}
}
