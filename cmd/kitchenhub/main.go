// kitchenhub is the device app: a local HTTP API over the household's
// offline-first store, syncing with a backend when one is configured.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/logging"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/seed"
	"github.com/kitchenhub/kitchenhub/internal/server"
	"github.com/kitchenhub/kitchenhub/internal/session"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

func main() {
	logger := logging.Setup(os.Getenv("KITCHENHUB_LOG_LEVEL"), os.Getenv("KITCHENHUB_LOG_FORMAT"))

	port := envOr("KITCHENHUB_PORT", "8080")
	dbPath := envOr("KITCHENHUB_DB_PATH", "kitchenhub.db")
	remoteURL := os.Getenv("KITCHENHUB_REMOTE_URL")
	token := os.Getenv("KITCHENHUB_TOKEN")

	store, err := localstore.Open(dbPath)
	if err != nil {
		logger.Error("open local store", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := seed.Run(store, logger); err != nil {
		logger.Error("seed sample data", "error", err)
		os.Exit(1)
	}

	// Without a backend the engine still runs; it just points at an
	// in-process store nothing ever reaches, since the offline household
	// neither pulls nor pushes.
	var client *remote.Client
	var rs remote.Store = remote.NewMemory()
	if remoteURL != "" {
		client = remote.NewClient(remoteURL, token, logger)
		rs = client
	}

	engine := syncer.New(store, rs, logger)
	defer engine.Close()

	sess, err := session.NewManager(store, engine, logger)
	if err != nil {
		logger.Error("restore session", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Start(ctx); err != nil {
		logger.Error("start session", "error", err)
		os.Exit(1)
	}

	srv := server.New(store, engine, sess, client, server.Config{Port: port}, logger)
	srv.StartNotifierBridge(ctx)

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
	engine.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
