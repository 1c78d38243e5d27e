// Package remote talks to the backend object store. All access goes through
// the Store interface so the sync engine can run against the real HTTP
// client or an in-process store.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var (
	// ErrUnavailable covers network failures and backend 5xx responses.
	ErrUnavailable = errors.New("remote unavailable")
	// ErrPermission means the caller is not a member of the household or
	// lacks the role the operation needs.
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent is one mutation observed on the remote store. Insert and
// update events carry the new row; delete events carry the old row so the
// consumer still has the id.
type ChangeEvent struct {
	Type  ChangeType      `json:"type"`
	Table string          `json:"table"`
	ID    string          `json:"id"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// Store is the remote object store, scoped by household on every call.
type Store interface {
	// Select returns all rows of table belonging to householdID.
	Select(ctx context.Context, table, householdID string) ([]json.RawMessage, error)
	// Upsert writes a full row. The row's household_id decides ownership.
	Upsert(ctx context.Context, table, id string, row json.RawMessage) error
	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, table, id string) error
	// Subscribe opens a change feed for one household across all tables.
	Subscribe(ctx context.Context, householdID string) (*Subscription, error)
}

// Subscription is a live change feed. The Events channel is closed when the
// feed ends, whether by Close or by the connection dropping.
type Subscription struct {
	events chan ChangeEvent

	once sync.Once
	stop func()
}

func newSubscription(buffer int, stop func()) *Subscription {
	return &Subscription{
		events: make(chan ChangeEvent, buffer),
		stop:   stop,
	}
}

func (s *Subscription) Events() <-chan ChangeEvent { return s.events }

// Close ends the feed. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.stop)
}
