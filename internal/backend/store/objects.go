// Package store is the backend's persistence layer: one generic object
// table for synced rows, plus households, members, and session tokens.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/remote"
)

// ObjectStore holds every household's synced rows in a single table keyed
// by (table_name, id). Payloads are opaque JSON; the backend never looks
// inside beyond the household_id the handler already extracted.
type ObjectStore struct {
	db       *sql.DB
	onChange func(householdID string, event remote.ChangeEvent)
}

func NewObjectStore(db *sql.DB) *ObjectStore {
	return &ObjectStore{db: db}
}

// OnChange registers the callback fired after every mutation. The server
// wires it to the websocket hub so feeds see changes as they commit.
func (s *ObjectStore) OnChange(fn func(householdID string, event remote.ChangeEvent)) {
	s.onChange = fn
}

func (s *ObjectStore) Select(table, householdID string) ([]json.RawMessage, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM objects WHERE table_name = ? AND household_id = ? ORDER BY created_at ASC`,
		table, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("select objects: %w", err)
	}
	defer rows.Close()

	var payloads []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		payloads = append(payloads, payload)
	}
	return payloads, rows.Err()
}

// Get returns the payload and owning household, or nil and "" when the
// row does not exist.
func (s *ObjectStore) Get(table, id string) (json.RawMessage, string, error) {
	var payload []byte
	var householdID string
	err := s.db.QueryRow(
		`SELECT payload, household_id FROM objects WHERE table_name = ? AND id = ?`,
		table, id,
	).Scan(&payload, &householdID)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get object: %w", err)
	}
	return payload, householdID, nil
}

func (s *ObjectStore) Upsert(table, id, householdID string, payload json.RawMessage) error {
	_, existingHousehold, err := s.Get(table, id)
	if err != nil {
		return err
	}
	exists := existingHousehold != ""

	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO objects (table_name, id, household_id, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(table_name, id) DO UPDATE SET
		 household_id = excluded.household_id, payload = excluded.payload,
		 updated_at = excluded.updated_at`,
		table, id, householdID, []byte(payload), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert object: %w", err)
	}

	typ := remote.ChangeInsert
	if exists {
		typ = remote.ChangeUpdate
	}
	s.emit(householdID, remote.ChangeEvent{Type: typ, Table: table, ID: id, New: payload})
	return nil
}

// Delete removes a row. Deleting a missing row is a no-op.
func (s *ObjectStore) Delete(table, id string) error {
	payload, householdID, err := s.Get(table, id)
	if err != nil {
		return err
	}
	if householdID == "" {
		return nil
	}

	if _, err := s.db.Exec(
		`DELETE FROM objects WHERE table_name = ? AND id = ?`, table, id,
	); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	s.emit(householdID, remote.ChangeEvent{Type: remote.ChangeDelete, Table: table, ID: id, Old: payload})
	return nil
}

// DeleteHousehold wipes every row a household owns, across all tables.
// Used when the household itself is deleted.
func (s *ObjectStore) DeleteHousehold(householdID string) error {
	if _, err := s.db.Exec(
		`DELETE FROM objects WHERE household_id = ?`, householdID,
	); err != nil {
		return fmt.Errorf("delete household objects: %w", err)
	}
	return nil
}

func (s *ObjectStore) emit(householdID string, event remote.ChangeEvent) {
	if s.onChange != nil {
		s.onChange(householdID, event)
	}
}
