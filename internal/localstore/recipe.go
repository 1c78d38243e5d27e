package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const recipeCols = `id, household_id, title, description, duration, difficulty, tags, servings, ingredients, steps, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var tags, ingredients, steps []byte

	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Title, &r.Description, &r.Duration,
		&r.Difficulty, &tags, &r.Servings, &ingredients, &steps,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal(steps, &r.Steps); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	return &r, nil
}

func recipeArgs(r model.Recipe) ([]any, error) {
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return nil, fmt.Errorf("encode steps: %w", err)
	}
	return []any{
		r.ID, r.HouseholdID, r.Title, r.Description, r.Duration,
		r.Difficulty, tags, r.Servings, ingredients, steps,
		r.CreatedAt, r.UpdatedAt,
	}, nil
}

const upsertRecipeSQL = `INSERT INTO recipes (` + recipeCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	household_id = excluded.household_id, title = excluded.title,
	description = excluded.description, duration = excluded.duration,
	difficulty = excluded.difficulty, tags = excluded.tags,
	servings = excluded.servings, ingredients = excluded.ingredients,
	steps = excluded.steps, created_at = excluded.created_at,
	updated_at = excluded.updated_at`

func (s *Store) GetRecipe(id string) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get recipe", err)
	}
	return r, nil
}

// PutRecipe upserts the record by id and notifies subscribers.
func (s *Store) PutRecipe(r model.Recipe) error {
	args, err := recipeArgs(r)
	if err != nil {
		return storageErr("put recipe", err)
	}
	if _, err := s.db.Exec(upsertRecipeSQL, args...); err != nil {
		return storageErr("put recipe", err)
	}
	s.publish(EventPut, CollectionRecipes, r.ID, r.HouseholdID)
	return nil
}

// BulkPutRecipes upserts every record in one transaction. Records absent
// from the slice are left untouched.
func (s *Store) BulkPutRecipes(recipes []model.Recipe) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("bulk put recipes", err)
	}
	defer tx.Rollback()

	for _, r := range recipes {
		args, err := recipeArgs(r)
		if err != nil {
			return storageErr("bulk put recipes", err)
		}
		if _, err := tx.Exec(upsertRecipeSQL, args...); err != nil {
			return storageErr("bulk put recipes", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("bulk put recipes", err)
	}

	for _, r := range recipes {
		s.publish(EventPut, CollectionRecipes, r.ID, r.HouseholdID)
	}
	return nil
}

// DeleteRecipe removes the record if present. Deleting a missing id is a
// no-op so realtime deletes can be applied idempotently.
func (s *Store) DeleteRecipe(id string) error {
	var householdID string
	err := s.db.QueryRow(`SELECT household_id FROM recipes WHERE id = ?`, id).Scan(&householdID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return storageErr("delete recipe", err)
	}
	if _, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return storageErr("delete recipe", err)
	}
	s.publish(EventDelete, CollectionRecipes, id, householdID)
	return nil
}

// ListRecipes returns the household's recipes, most recently updated first.
func (s *Store) ListRecipes(householdID string) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE household_id = ? ORDER BY updated_at DESC`,
		householdID,
	)
	if err != nil {
		return nil, storageErr("list recipes", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, storageErr("scan recipe", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}
