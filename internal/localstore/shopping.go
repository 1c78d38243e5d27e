package localstore

import (
	"database/sql"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const shoppingCols = `id, household_id, name, quantity, unit, is_bought, source_recipe_id, created_at, updated_at`

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var bought int
	var sourceRecipe sql.NullString

	err := scanner.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &item.Quantity, &item.Unit,
		&bought, &sourceRecipe, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.IsBought = bought != 0
	if sourceRecipe.Valid {
		item.SourceRecipeID = sourceRecipe.String
	}
	return &item, nil
}

func shoppingArgs(item model.ShoppingListItem) []any {
	var sourceRecipe sql.NullString
	if item.SourceRecipeID != "" {
		sourceRecipe = sql.NullString{String: item.SourceRecipeID, Valid: true}
	}
	return []any{
		item.ID, item.HouseholdID, item.Name, item.Quantity, item.Unit,
		item.IsBought, sourceRecipe, item.CreatedAt, item.UpdatedAt,
	}
}

const upsertShoppingSQL = `INSERT INTO shopping_items (` + shoppingCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	household_id = excluded.household_id, name = excluded.name,
	quantity = excluded.quantity, unit = excluded.unit,
	is_bought = excluded.is_bought, source_recipe_id = excluded.source_recipe_id,
	created_at = excluded.created_at, updated_at = excluded.updated_at`

func (s *Store) GetShoppingItem(id string) (*model.ShoppingListItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get shopping item", err)
	}
	return item, nil
}

func (s *Store) PutShoppingItem(item model.ShoppingListItem) error {
	if _, err := s.db.Exec(upsertShoppingSQL, shoppingArgs(item)...); err != nil {
		return storageErr("put shopping item", err)
	}
	s.publish(EventPut, CollectionShopping, item.ID, item.HouseholdID)
	return nil
}

func (s *Store) BulkPutShoppingItems(items []model.ShoppingListItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("bulk put shopping items", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(upsertShoppingSQL, shoppingArgs(item)...); err != nil {
			return storageErr("bulk put shopping items", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("bulk put shopping items", err)
	}

	for _, item := range items {
		s.publish(EventPut, CollectionShopping, item.ID, item.HouseholdID)
	}
	return nil
}

func (s *Store) DeleteShoppingItem(id string) error {
	var householdID string
	err := s.db.QueryRow(`SELECT household_id FROM shopping_items WHERE id = ?`, id).Scan(&householdID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return storageErr("delete shopping item", err)
	}
	if _, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id); err != nil {
		return storageErr("delete shopping item", err)
	}
	s.publish(EventDelete, CollectionShopping, id, householdID)
	return nil
}

// ListShoppingItems returns the household's list in the order items were
// added.
func (s *Store) ListShoppingItems(householdID string) ([]model.ShoppingListItem, error) {
	return s.queryShopping(
		`SELECT `+shoppingCols+` FROM shopping_items WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
}

func (s *Store) ListUnboughtShoppingItems(householdID string) ([]model.ShoppingListItem, error) {
	return s.queryShopping(
		`SELECT `+shoppingCols+` FROM shopping_items
		 WHERE household_id = ? AND is_bought = 0 ORDER BY created_at ASC`,
		householdID,
	)
}

// DeleteBoughtShoppingItems removes every bought item for the household and
// returns the deleted ids so the caller can mirror the deletes remotely.
func (s *Store) DeleteBoughtShoppingItems(householdID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT id FROM shopping_items WHERE household_id = ? AND is_bought = 1`,
		householdID,
	)
	if err != nil {
		return nil, storageErr("clear bought items", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("clear bought items", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("clear bought items", err)
	}

	if _, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE household_id = ? AND is_bought = 1`,
		householdID,
	); err != nil {
		return nil, storageErr("clear bought items", err)
	}

	for _, id := range ids {
		s.publish(EventDelete, CollectionShopping, id, householdID)
	}
	return ids, nil
}

func (s *Store) queryShopping(query string, args ...any) ([]model.ShoppingListItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list shopping items", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, storageErr("scan shopping item", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
