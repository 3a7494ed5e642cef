package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KevinAshley/webparts/internal/config"
	"github.com/KevinAshley/webparts/internal/handler"
	"github.com/KevinAshley/webparts/internal/resource"
	"github.com/KevinAshley/webparts/internal/server"
	"github.com/KevinAshley/webparts/internal/session"
	"github.com/KevinAshley/webparts/internal/store"
	"github.com/KevinAshley/webparts/internal/toast"
	"github.com/KevinAshley/webparts/internal/verify"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer st.Close()

	if err := st.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrapping schema: %v", err)
	}
	log.Println("database ready")

	defs, err := resource.Load()
	if err != nil {
		log.Fatalf("loading resource schemas: %v", err)
	}

	sessions := session.NewManager(cfg.SessionMaxAge, cfg.SessionIdleTimeout)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					log.Printf("swept %d expired sessions", n)
				}
			}
		}
	}()

	var verifier verify.Verifier
	if cfg.TurnstileSecret != "" {
		verifier = verify.NewWidget(cfg.TurnstileSecret)
	} else {
		// No secret configured: accept every challenge. Useful for
		// local development, useless in production.
		log.Println("verification secret not set, accepting all challenges")
		verifier = verify.Static(true)
	}

	h := handler.New(handler.Config{
		Store:         st,
		Sessions:      sessions,
		Bus:           toast.NewBus(),
		Verifier:      verifier,
		Definitions:   defs,
		SiteName:      cfg.SiteName,
		SiteKey:       cfg.TurnstileSiteKey,
		Theme:         cfg.Theme,
		SessionMaxAge: cfg.SessionMaxAge,
	})

	if err := server.Run(ctx, server.Config{Addr: cfg.Addr, Handler: h}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
