package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictacfade/internal/config"
	"tictacfade/internal/room"
	"tictacfade/internal/ws"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the layers together and manages the server lifecycle, so
// deferred cleanup still executes on the way out.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Initialize layers
	registry := room.NewRegistry()
	hub := ws.NewHub(log)
	coordinator := room.NewCoordinator(registry, hub, log)
	gateway := ws.NewHandler(hub, coordinator, cfg.AllowedOrigin, log)

	// Setup routes
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Infof("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Infof("Server starting on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
