package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type IngredientItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type RecipeStep struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tip  string `json:"tip,omitempty"`
}

type Recipe struct {
	ID          string           `json:"id"`
	HouseholdID string           `json:"householdId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Duration    int              `json:"duration"`
	Difficulty  Difficulty       `json:"difficulty"`
	Tags        []string         `json:"tags"`
	Servings    int              `json:"servings,omitempty"`
	Ingredients []IngredientItem `json:"ingredients"`
	Steps       []RecipeStep     `json:"steps"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
