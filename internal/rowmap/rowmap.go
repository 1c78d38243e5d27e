// Package rowmap converts between the app's local records and the remote
// store's snake_case row shape. Each To/From pair is an exact inverse:
// mapping a record to a row and back yields the original record, so sync
// can apply remote rows without drift. Nested lists (ingredients, steps,
// chat messages) are stored in their local shape inside the row JSON.
package rowmap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

// Remote table names.
const (
	TableRecipes      = "recipes"
	TableInventory    = "inventory"
	TableShoppingList = "shopping_list"
	TableChatLogs     = "chat_logs"
)

// Tables lists every synced table, in pull order.
var Tables = []string{TableRecipes, TableInventory, TableShoppingList, TableChatLogs}

type recipeRow struct {
	ID          string                 `json:"id"`
	HouseholdID string                 `json:"household_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Duration    int                    `json:"duration"`
	Difficulty  model.Difficulty       `json:"difficulty"`
	Tags        []string               `json:"tags"`
	Servings    int                    `json:"servings,omitempty"`
	Ingredients []model.IngredientItem `json:"ingredients"`
	Steps       []model.RecipeStep     `json:"steps"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func RecipeToRow(r model.Recipe) (json.RawMessage, error) {
	row := recipeRow{
		ID:          r.ID,
		HouseholdID: r.HouseholdID,
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		Difficulty:  r.Difficulty,
		Tags:        r.Tags,
		Servings:    r.Servings,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	return marshalRow("recipe", row)
}

func RecipeFromRow(raw json.RawMessage) (model.Recipe, error) {
	var row recipeRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.Recipe{}, fmt.Errorf("decode recipe row: %w", err)
	}
	return model.Recipe{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		Title:       row.Title,
		Description: row.Description,
		Duration:    row.Duration,
		Difficulty:  row.Difficulty,
		Tags:        row.Tags,
		Servings:    row.Servings,
		Ingredients: row.Ingredients,
		Steps:       row.Steps,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

type inventoryRow struct {
	ID          string         `json:"id"`
	HouseholdID string         `json:"household_id"`
	Name        string         `json:"name"`
	Quantity    float64        `json:"quantity"`
	Unit        string         `json:"unit"`
	Location    model.Location `json:"location"`
	ExpiryDate  *time.Time     `json:"expiry_date,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func InventoryToRow(item model.InventoryItem) (json.RawMessage, error) {
	row := inventoryRow{
		ID:          item.ID,
		HouseholdID: item.HouseholdID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		Location:    item.Location,
		ExpiryDate:  item.ExpiryDate,
		Notes:       item.Notes,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	return marshalRow("inventory item", row)
}

func InventoryFromRow(raw json.RawMessage) (model.InventoryItem, error) {
	var row inventoryRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.InventoryItem{}, fmt.Errorf("decode inventory row: %w", err)
	}
	item := model.InventoryItem{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		Name:        row.Name,
		Quantity:    row.Quantity,
		Unit:        row.Unit,
		Location:    row.Location,
		ExpiryDate:  row.ExpiryDate,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if item.ExpiryDate != nil {
		utc := item.ExpiryDate.UTC()
		item.ExpiryDate = &utc
	}
	return item, nil
}

type shoppingRow struct {
	ID             string    `json:"id"`
	HouseholdID    string    `json:"household_id"`
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	IsBought       bool      `json:"is_bought"`
	SourceRecipeID string    `json:"source_recipe_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ShoppingToRow(item model.ShoppingListItem) (json.RawMessage, error) {
	row := shoppingRow{
		ID:             item.ID,
		HouseholdID:    item.HouseholdID,
		Name:           item.Name,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		IsBought:       item.IsBought,
		SourceRecipeID: item.SourceRecipeID,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	return marshalRow("shopping item", row)
}

func ShoppingFromRow(raw json.RawMessage) (model.ShoppingListItem, error) {
	var row shoppingRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.ShoppingListItem{}, fmt.Errorf("decode shopping row: %w", err)
	}
	return model.ShoppingListItem{
		ID:             row.ID,
		HouseholdID:    row.HouseholdID,
		Name:           row.Name,
		Quantity:       row.Quantity,
		Unit:           row.Unit,
		IsBought:       row.IsBought,
		SourceRecipeID: row.SourceRecipeID,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}, nil
}

type chatLogRow struct {
	ID          string              `json:"id"`
	HouseholdID string              `json:"household_id"`
	RecipeID    string              `json:"recipe_id,omitempty"`
	Title       string              `json:"title"`
	Messages    []model.ChatMessage `json:"messages"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func ChatLogToRow(log model.ChatLog) (json.RawMessage, error) {
	row := chatLogRow{
		ID:          log.ID,
		HouseholdID: log.HouseholdID,
		RecipeID:    log.RecipeID,
		Title:       log.Title,
		Messages:    log.Messages,
		CreatedAt:   log.CreatedAt,
		UpdatedAt:   log.UpdatedAt,
	}
	return marshalRow("chat log", row)
}

func ChatLogFromRow(raw json.RawMessage) (model.ChatLog, error) {
	var row chatLogRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return model.ChatLog{}, fmt.Errorf("decode chat log row: %w", err)
	}
	return model.ChatLog{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		RecipeID:    row.RecipeID,
		Title:       row.Title,
		Messages:    row.Messages,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

// RowID pulls the id out of a raw row without decoding the whole thing.
func RowID(raw json.RawMessage) (string, error) {
	var row struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return "", fmt.Errorf("decode row id: %w", err)
	}
	return row.ID, nil
}

func marshalRow(kind string, row any) (json.RawMessage, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", kind, err)
	}
	return raw, nil
}
