package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/YouWantToPinch/pocketwise-api/internal/api"
	"github.com/YouWantToPinch/pocketwise-api/sql/schema"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &api.APIConfig{}
	if err := cfg.Init(".env", ""); err != nil {
		log.Fatalf("could not load configuration: %v", err)
	}
	if err := cfg.ConnectToDB(ctx, schema.FS); err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	if err := cfg.ConnectEvents(); err != nil {
		log.Fatalf("could not connect to broker: %v", err)
	}
	defer func() {
		if err := cfg.Close(); err != nil {
			slog.Error("error while closing resources", slog.String("error", err.Error()))
		}
	}()

	pocketwise := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.SetupMux(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// start server
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", pocketwise.Addr))
		serverErr <- pocketwise.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pocketwise.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	slog.Info("server stopped")
}
