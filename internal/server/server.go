// Package server assembles the handler and runs the HTTP server.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KevinAshley/webparts/internal/handler"
)

// Config holds server configuration.
type Config struct {
	Addr    string
	Handler *handler.Handler
}

// Run starts the HTTP server with all routes registered and shuts it
// down when ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()
	r.Use(handler.Recovery, handler.Logging)
	cfg.Handler.Routes(r)

	log.Printf("starting server on %s", cfg.Addr)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
