package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-nexus/internal/handler"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	port := cfg.Server.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	router := handler.NewRouter(
		handler.RouterConfig{CORSOrigins: cfg.Server.CORSOrigins, DefaultViewer: cfg.Session.DefaultViewer},
		handler.Services{Events: a.events, Profiles: a.profiles, Admin: a.admin, Notices: a.hub},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run in background goroutine so we can wait for a shutdown signal.
	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatHTTP, "server listening", "addr", "http://localhost:"+port, "catalog", cfg.Catalog.Source, "tracing", a.tracer.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(log.CatHTTP, "shutting down server")
	// Open notification streams end with the hub.
	a.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info(log.CatHTTP, "server stopped")
	return nil
}
