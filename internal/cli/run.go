package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/waypoint/internal/config"
)

// ShutdownTimeout bounds how long outstanding requests may take once the
// server is asked to stop.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures Serve. Listener is optional; when nil Serve listens
// on cfg.Addr.
type ServeOptions struct {
	Config   config.Config
	Logger   *slog.Logger
	Listener net.Listener
	// Ready, when set, receives the bound address once the server accepts.
	Ready func(addr string)
}

// Serve loads the definition, wires the session backend and blocks serving
// HTTP until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg, logger := opts.Config, opts.Logger
	if cfg.DefinitionPath == "" {
		return errors.New("no definition given")
	}

	def, err := LoadDefinition(cfg.DefinitionPath)
	if err != nil {
		return err
	}
	metrics := NewMetrics(cfg)
	wiz, err := NewWizard(def, metrics, logger)
	if err != nil {
		return err
	}
	sessions, closeStore, err := NewSessions(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close session store", "err", err)
		}
	}()

	handler, err := NewRouter(cfg, wiz, sessions, metrics, logger)
	if err != nil {
		return err
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", cfg.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting waypoint server", "addr", ln.Addr().String(), "wizard", wiz.Name(), "base", def.BaseURL)
		serverErrors <- srv.Serve(ln)
	}()
	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("start shutdown", "cause", context.Cause(ctx))

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		logger.Info("waypoint server stopped gracefully")
		return nil
	}
}
