// Package session tracks which household the device is working in and
// drives the sync engine through switches.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

const activeHouseholdKey = "active_household"

// Manager serializes household switches. A switch that arrives while an
// earlier one is still pulling cancels the earlier pull, so records from a
// household the user already left never land in view.
type Manager struct {
	local  *localstore.Store
	engine *syncer.Engine
	logger *slog.Logger

	// switchMu serializes switch bodies; mu guards the fields.
	switchMu sync.Mutex
	mu       sync.Mutex
	active   string
	cancel   context.CancelFunc
}

// NewManager restores the last active household from the local store. A
// fresh install starts in the offline household.
func NewManager(local *localstore.Store, engine *syncer.Engine, logger *slog.Logger) (*Manager, error) {
	active, err := local.GetSetting(activeHouseholdKey)
	if err != nil {
		return nil, fmt.Errorf("load active household: %w", err)
	}
	if active == "" {
		active = model.OfflineHouseholdID
	}
	return &Manager{
		local:  local,
		engine: engine,
		logger: logger.With("component", "session"),
		active: active,
	}, nil
}

func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Start brings the persisted household online. Called once at boot.
func (m *Manager) Start(ctx context.Context) error {
	return m.Switch(ctx, m.Active())
}

// Switch makes householdID the active household: it cancels any in-flight
// switch, pulls the household's data, and opens its realtime feed. A pull
// failure is not fatal; the app keeps working on local data.
func (m *Manager) Switch(ctx context.Context, householdID string) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	if sctx.Err() != nil {
		// Superseded while waiting for an earlier switch to wind down.
		return nil
	}

	m.engine.Deactivate()

	m.mu.Lock()
	m.active = householdID
	m.mu.Unlock()
	if err := m.local.SetSetting(activeHouseholdKey, householdID); err != nil {
		return fmt.Errorf("persist active household: %w", err)
	}

	if err := m.engine.Pull(sctx, householdID); err != nil {
		if sctx.Err() != nil {
			return nil
		}
		m.logger.Warn("pull failed, continuing with local data",
			"household_id", householdID, "error", err)
	}

	if sctx.Err() != nil {
		return nil
	}
	if err := m.engine.Activate(sctx, householdID); err != nil {
		m.logger.Warn("realtime subscribe failed",
			"household_id", householdID, "error", err)
	}

	m.logger.Info("household active", "household_id", householdID)
	return nil
}
