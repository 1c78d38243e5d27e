// kitchenhubd is the backend: the shared object store, household
// management, and the realtime change feed the device apps sync against.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/backend/database"
	"github.com/kitchenhub/kitchenhub/internal/backend/server"
	"github.com/kitchenhub/kitchenhub/internal/logging"
)

func main() {
	logger := logging.Setup(os.Getenv("KITCHENHUBD_LOG_LEVEL"), os.Getenv("KITCHENHUBD_LOG_FORMAT"))

	cfg := server.Config{
		Port:        envOr("KITCHENHUBD_PORT", "8090"),
		AdminSecret: os.Getenv("KITCHENHUBD_ADMIN_SECRET"),
	}
	dbPath := envOr("KITCHENHUBD_DB_PATH", "kitchenhubd.db")

	if cfg.AdminSecret == "" {
		logger.Warn("KITCHENHUBD_ADMIN_SECRET not set; token provisioning is disabled")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(db, cfg, logger)
	srv.StartMaintenance(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
