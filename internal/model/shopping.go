package model

import "time"

// ShoppingListItem is a single line on the household shopping list.
// SourceRecipeID is a back-reference only; the recipe may be deleted
// independently without touching the item.
type ShoppingListItem struct {
	ID             string    `json:"id"`
	HouseholdID    string    `json:"householdId"`
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	IsBought       bool      `json:"isBought"`
	SourceRecipeID string    `json:"sourceRecipeId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
