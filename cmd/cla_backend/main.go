package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SscSPs/client_ledger_app/internal/adapters/storage/csvfile"
	"github.com/SscSPs/client_ledger_app/internal/adapters/storage/memory"
	"github.com/SscSPs/client_ledger_app/internal/core/services"
	"github.com/SscSPs/client_ledger_app/internal/handlers"
	"github.com/SscSPs/client_ledger_app/internal/middleware"
	"github.com/SscSPs/client_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := memory.NewStore()
	snapshots := csvfile.NewStore()
	ledgerService := services.NewLedgerService(store, snapshots, cfg.DataFile)

	// Restore the primary store; a corrupt file is fatal at startup.
	if err := ledgerService.Restore(ctx); err != nil {
		logger.Error("Failed to restore account store", slog.String("path", cfg.DataFile), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Account store restored", slog.String("path", cfg.DataFile))

	// Start the backup scheduler; it fires immediately, then every interval,
	// and joins cleanly on shutdown.
	backupService := services.NewBackupService(store, snapshots, cfg.BackupFile, cfg.BackupInterval, logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		backupService.Run(ctx)
	}()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, ledgerService); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}

	// Join the backup scheduler before exiting.
	wg.Wait()
	logger.Info("Shutdown complete")
}
