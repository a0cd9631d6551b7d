package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/blueprint-estimator/internal/app"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/inbox"
	"github.com/joseph-ayodele/blueprint-estimator/internal/server"
)

func main() {
	if err := common.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	if err := a.Ready(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		a.Close(context.Background())
		os.Exit(1)
	}
	logger.Info("database health OK", "driver", cfg.Database.Driver)

	if cfg.Inbox.Dir != "" {
		w, err := inbox.New(inbox.Config{
			Root:        cfg.Inbox.Dir,
			InitialScan: true,
			Debounce:    cfg.Inbox.Debounce,
			UserID:      cfg.Inbox.UserID,
		}, a.Files, a.Queue, logger)
		if err != nil {
			logger.Error("invalid inbox configuration", "error", err)
			a.Close(context.Background())
			os.Exit(2)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      server.NewRouter(server.DepsFromApp(a, cfg.Server.WriteTimeout)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("estimatord listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("http serve failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	a.Close(shutdownCtx)
	logger.Info("stopped")
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
