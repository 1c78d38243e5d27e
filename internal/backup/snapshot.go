// Package backup exports a household's data as an encrypted snapshot and
// restores it elsewhere. The main use is moving offline data to a new
// device without a backend account.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
)

// Snapshot holds everything one household has in the local store.
type Snapshot struct {
	HouseholdID  string                   `json:"householdId"`
	ExportedAt   time.Time                `json:"exportedAt"`
	Recipes      []model.Recipe           `json:"recipes"`
	Inventory    []model.InventoryItem    `json:"inventory"`
	ShoppingList []model.ShoppingListItem `json:"shoppingList"`
	ChatLogs     []model.ChatLog          `json:"chatLogs"`
}

// Export serializes the household's records and encrypts them under the
// passphrase.
func Export(store *localstore.Store, householdID, passphrase string) ([]byte, error) {
	snap := Snapshot{
		HouseholdID: householdID,
		ExportedAt:  time.Now().UTC(),
	}

	var err error
	if snap.Recipes, err = store.ListRecipes(householdID); err != nil {
		return nil, fmt.Errorf("export recipes: %w", err)
	}
	if snap.Inventory, err = store.ListInventory(householdID); err != nil {
		return nil, fmt.Errorf("export inventory: %w", err)
	}
	if snap.ShoppingList, err = store.ListShoppingItems(householdID); err != nil {
		return nil, fmt.Errorf("export shopping list: %w", err)
	}
	if snap.ChatLogs, err = store.ListChatLogs(householdID); err != nil {
		return nil, fmt.Errorf("export chat logs: %w", err)
	}

	plaintext, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return Encrypt(plaintext, passphrase)
}

// Import decrypts a snapshot and upserts its records into the local store.
// Existing records with matching ids are overwritten; nothing is deleted.
func Import(store *localstore.Store, data []byte, passphrase string) (*Snapshot, error) {
	plaintext, err := Decrypt(data, passphrase)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := store.BulkPutRecipes(snap.Recipes); err != nil {
		return nil, fmt.Errorf("import recipes: %w", err)
	}
	if err := store.BulkPutInventoryItems(snap.Inventory); err != nil {
		return nil, fmt.Errorf("import inventory: %w", err)
	}
	if err := store.BulkPutShoppingItems(snap.ShoppingList); err != nil {
		return nil, fmt.Errorf("import shopping list: %w", err)
	}
	if err := store.BulkPutChatLogs(snap.ChatLogs); err != nil {
		return nil, fmt.Errorf("import chat logs: %w", err)
	}
	return &snap, nil
}
