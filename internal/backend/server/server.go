// Package server wires the backend's stores, handlers, and middleware
// into an http.Server.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/backend/handler"
	"github.com/kitchenhub/kitchenhub/internal/backend/store"
	"github.com/kitchenhub/kitchenhub/internal/middleware"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	ws "github.com/kitchenhub/kitchenhub/internal/websocket"
)

const (
	joinLimit  = 10
	joinWindow = time.Minute
)

type Config struct {
	Port        string
	AdminSecret string
}

type Server struct {
	httpServer *http.Server
	sessions   *store.SessionStore
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	objects := store.NewObjectStore(db)
	objects.OnChange(func(householdID string, event remote.ChangeEvent) {
		hub.Broadcast(householdID, event)
	})
	households := store.NewHouseholdStore(db)
	sessions := store.NewSessionStore(db)

	h := handler.New(objects, households, sessions, hub, cfg.AdminSecret, logger)
	limiter := middleware.NewRateLimiter()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/tokens", h.CreateToken)

	authed := func(fn http.HandlerFunc) http.Handler {
		return h.RequireAuth(fn)
	}
	rateLimited := middleware.RateLimit(limiter, middleware.RealIP, joinLimit, joinWindow)

	mux.Handle("GET /api/objects/{table}", authed(h.ListObjects))
	mux.Handle("PUT /api/objects/{table}/{id}", authed(h.UpsertObject))
	mux.Handle("DELETE /api/objects/{table}/{id}", authed(h.DeleteObject))

	mux.Handle("GET /api/households", authed(h.ListHouseholds))
	mux.Handle("POST /api/households", authed(h.CreateHousehold))
	mux.Handle("POST /api/households/join", h.RequireAuth(rateLimited(http.HandlerFunc(h.JoinHousehold))))
	mux.Handle("PATCH /api/households/{id}", authed(h.RenameHousehold))
	mux.Handle("DELETE /api/households/{id}", authed(h.DeleteHousehold))
	mux.Handle("POST /api/households/{id}/leave", authed(h.LeaveHousehold))
	mux.Handle("GET /api/households/{id}/members", authed(h.ListMembers))

	mux.Handle("GET /api/sync/ws", authed(h.SyncFeed))

	root := middleware.RequestLogger(logger.With("component", "http"))(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions: sessions,
		limiter:  limiter,
		logger:   logger.With("component", "server"),
	}
}

// Handler exposes the full middleware stack, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("backend listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// StartMaintenance prunes expired sessions and rate-limit windows until
// ctx is cancelled.
func (s *Server) StartMaintenance(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := s.sessions.DeleteExpired(); err != nil {
					s.logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					s.logger.Info("pruned expired sessions", "count", n)
				}
				s.limiter.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
