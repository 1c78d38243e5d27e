// Package server wires the device app: repos over the local store, the
// sync engine, the session manager, and a websocket pushing local store
// changes to open UI views.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/handler"
	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/middleware"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/repo"
	"github.com/kitchenhub/kitchenhub/internal/session"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
	ws "github.com/kitchenhub/kitchenhub/internal/websocket"
)

type Config struct {
	Port string
}

type Server struct {
	httpServer *http.Server
	store      *localstore.Store
	hub        *ws.Hub
	logger     *slog.Logger
}

// New assembles the device HTTP API. rc may be nil when no backend is
// configured; everything except household management works without one.
func New(store *localstore.Store, engine *syncer.Engine, sess *session.Manager, rc *remote.Client, cfg Config, logger *slog.Logger) *Server {
	recipes := repo.NewRecipes(store, engine)
	inventory := repo.NewInventory(store, engine)
	shopping := repo.NewShopping(store, engine)
	chat := repo.NewChat(store, engine)

	h := handler.New(store, recipes, inventory, shopping, chat, sess, engine, rc, logger)
	hub := ws.NewHub(logger.With("component", "websocket"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /api/recipes", h.ListRecipes)
	mux.HandleFunc("POST /api/recipes", h.CreateRecipe)
	mux.HandleFunc("GET /api/recipes/recommendations", h.RecommendRecipes)
	mux.HandleFunc("GET /api/recipes/{id}", h.GetRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", h.UpdateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", h.DeleteRecipe)
	mux.HandleFunc("GET /api/recipes/{id}/diff", h.RecipeDiff)
	mux.HandleFunc("POST /api/recipes/{id}/shopping", h.AddMissingToShopping)

	mux.HandleFunc("GET /api/inventory", h.ListInventory)
	mux.HandleFunc("POST /api/inventory", h.CreateInventoryItem)
	mux.HandleFunc("GET /api/inventory/expiring", h.ListExpiring)
	mux.HandleFunc("GET /api/inventory/{id}", h.GetInventoryItem)
	mux.HandleFunc("PUT /api/inventory/{id}", h.UpdateInventoryItem)
	mux.HandleFunc("DELETE /api/inventory/{id}", h.DeleteInventoryItem)

	mux.HandleFunc("GET /api/shopping", h.ListShopping)
	mux.HandleFunc("POST /api/shopping", h.CreateShoppingItem)
	mux.HandleFunc("POST /api/shopping/clear-bought", h.ClearBoughtItems)
	mux.HandleFunc("PUT /api/shopping/{id}", h.UpdateShoppingItem)
	mux.HandleFunc("DELETE /api/shopping/{id}", h.DeleteShoppingItem)
	mux.HandleFunc("POST /api/shopping/{id}/toggle", h.ToggleShoppingItem)

	mux.HandleFunc("GET /api/chats", h.ListChatLogs)
	mux.HandleFunc("POST /api/chats", h.CreateChatLog)
	mux.HandleFunc("GET /api/chats/{id}", h.GetChatLog)
	mux.HandleFunc("DELETE /api/chats/{id}", h.DeleteChatLog)
	mux.HandleFunc("POST /api/chats/{id}/messages", h.AddChatMessage)

	mux.HandleFunc("GET /api/today", h.TodaySuggestions)

	mux.HandleFunc("GET /api/households", h.ListHouseholds)
	mux.HandleFunc("POST /api/households", h.CreateHousehold)
	mux.HandleFunc("POST /api/households/join", h.JoinHousehold)
	mux.HandleFunc("PATCH /api/households/{id}", h.RenameHousehold)
	mux.HandleFunc("DELETE /api/households/{id}", h.DeleteHousehold)
	mux.HandleFunc("POST /api/households/{id}/leave", h.LeaveHousehold)
	mux.HandleFunc("GET /api/households/{id}/members", h.ListMembers)

	mux.HandleFunc("GET /api/session", h.GetSession)
	mux.HandleFunc("POST /api/session/switch", h.SwitchHousehold)
	mux.HandleFunc("GET /api/sync/status", h.SyncStatus)

	mux.HandleFunc("POST /api/backup/export", h.ExportBackup)
	mux.HandleFunc("POST /api/backup/import", h.ImportBackup)

	// The UI watches /ws and re-queries whatever collection an event names.
	// The feed is filtered to the active household so a switch mid-session
	// does not leak another household's changes into the view.
	mux.Handle("GET /ws", ws.Handle(hub, logger, func(*http.Request) string {
		return sess.Active()
	}))

	root := middleware.RequestLogger(logger.With("component", "http"))(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:  store,
		hub:    hub,
		logger: logger.With("component", "server"),
	}
}

// Handler exposes the full middleware stack, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// StartNotifierBridge forwards local store events to connected websocket
// clients until ctx is cancelled.
func (s *Server) StartNotifierBridge(ctx context.Context) {
	events, cancel := s.store.Notifier().Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				s.hub.Broadcast(event.HouseholdID, event)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Server) Start() error {
	s.logger.Info("device api listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
