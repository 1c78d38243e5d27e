package localstore

import (
	"database/sql"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const inventoryCols = `id, household_id, name, quantity, unit, location, expiry_date, notes, created_at, updated_at`

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var expiry sql.NullTime

	err := scanner.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &item.Quantity, &item.Unit,
		&item.Location, &expiry, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		item.ExpiryDate = &expiry.Time
	}
	return &item, nil
}

func inventoryArgs(item model.InventoryItem) []any {
	var expiry sql.NullTime
	if item.ExpiryDate != nil {
		expiry = sql.NullTime{Time: *item.ExpiryDate, Valid: true}
	}
	return []any{
		item.ID, item.HouseholdID, item.Name, item.Quantity, item.Unit,
		item.Location, expiry, item.Notes, item.CreatedAt, item.UpdatedAt,
	}
}

const upsertInventorySQL = `INSERT INTO inventory_items (` + inventoryCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	household_id = excluded.household_id, name = excluded.name,
	quantity = excluded.quantity, unit = excluded.unit,
	location = excluded.location, expiry_date = excluded.expiry_date,
	notes = excluded.notes, created_at = excluded.created_at,
	updated_at = excluded.updated_at`

func (s *Store) GetInventoryItem(id string) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get inventory item", err)
	}
	return item, nil
}

func (s *Store) PutInventoryItem(item model.InventoryItem) error {
	if _, err := s.db.Exec(upsertInventorySQL, inventoryArgs(item)...); err != nil {
		return storageErr("put inventory item", err)
	}
	s.publish(EventPut, CollectionInventory, item.ID, item.HouseholdID)
	return nil
}

func (s *Store) BulkPutInventoryItems(items []model.InventoryItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("bulk put inventory", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(upsertInventorySQL, inventoryArgs(item)...); err != nil {
			return storageErr("bulk put inventory", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("bulk put inventory", err)
	}

	for _, item := range items {
		s.publish(EventPut, CollectionInventory, item.ID, item.HouseholdID)
	}
	return nil
}

func (s *Store) DeleteInventoryItem(id string) error {
	var householdID string
	err := s.db.QueryRow(`SELECT household_id FROM inventory_items WHERE id = ?`, id).Scan(&householdID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return storageErr("delete inventory item", err)
	}
	if _, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
		return storageErr("delete inventory item", err)
	}
	s.publish(EventDelete, CollectionInventory, id, householdID)
	return nil
}

func (s *Store) ListInventory(householdID string) ([]model.InventoryItem, error) {
	return s.queryInventory(
		`SELECT `+inventoryCols+` FROM inventory_items WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
}

// ListInventoryExpiringBefore returns items with an expiry date at or before
// the cutoff, soonest first. Items without an expiry date are skipped.
func (s *Store) ListInventoryExpiringBefore(householdID string, cutoff time.Time) ([]model.InventoryItem, error) {
	return s.queryInventory(
		`SELECT `+inventoryCols+` FROM inventory_items
		 WHERE household_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?
		 ORDER BY expiry_date ASC`,
		householdID, cutoff,
	)
}

func (s *Store) queryInventory(query string, args ...any) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list inventory", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, storageErr("scan inventory item", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
