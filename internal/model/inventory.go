package model

import "time"

type Location string

const (
	LocationAmbient      Location = "ambient"
	LocationRefrigerated Location = "refrigerated"
	LocationFrozen       Location = "frozen"
)

type InventoryItem struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"householdId"`
	Name        string     `json:"name"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	Location    Location   `json:"location"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
