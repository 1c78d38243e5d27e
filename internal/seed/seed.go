// Package seed gives a fresh install something to look at: a few sample
// recipes and pantry items in the offline household.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
)

// Run populates the offline household. It does nothing when the store
// already holds recipes, so reseeding across restarts is safe.
func Run(store *localstore.Store, logger *slog.Logger) error {
	existing, err := store.ListRecipes(model.OfflineHouseholdID)
	if err != nil {
		return fmt.Errorf("check existing recipes: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	recipes := sampleRecipes(now)
	if err := store.BulkPutRecipes(recipes); err != nil {
		return fmt.Errorf("seed recipes: %w", err)
	}
	inventory := sampleInventory(now)
	if err := store.BulkPutInventoryItems(inventory); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}

	logger.Info("seeded offline household",
		"recipes", len(recipes), "inventory", len(inventory))
	return nil
}

func sampleRecipes(now time.Time) []model.Recipe {
	return []model.Recipe{
		{
			ID:          uuid.NewString(),
			HouseholdID: model.OfflineHouseholdID,
			Title:       "番茄炒蛋",
			Description: "十五分钟搞定的家常菜",
			Duration:    15,
			Difficulty:  model.DifficultyEasy,
			Tags:        []string{"家常", "快手"},
			Servings:    2,
			Ingredients: []model.IngredientItem{
				{ID: uuid.NewString(), Name: "鸡蛋", Amount: 3, Unit: "个"},
				{ID: uuid.NewString(), Name: "番茄", Amount: 2, Unit: "个"},
				{ID: uuid.NewString(), Name: "葱", Amount: 1, Unit: "根"},
			},
			Steps: []model.RecipeStep{
				{ID: uuid.NewString(), Text: "鸡蛋打散,加少许盐"},
				{ID: uuid.NewString(), Text: "番茄切块,葱切花"},
				{ID: uuid.NewString(), Text: "热油炒蛋,盛出备用"},
				{ID: uuid.NewString(), Text: "下番茄炒出汁,倒回鸡蛋翻匀", Tip: "喜欢汤汁多可以加半碗水"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			HouseholdID: model.OfflineHouseholdID,
			Title:       "蛋炒饭",
			Description: "隔夜饭的最好归宿",
			Duration:    10,
			Difficulty:  model.DifficultyEasy,
			Tags:        []string{"主食", "快手"},
			Servings:    1,
			Ingredients: []model.IngredientItem{
				{ID: uuid.NewString(), Name: "米饭", Amount: 1, Unit: "碗"},
				{ID: uuid.NewString(), Name: "鸡蛋", Amount: 2, Unit: "个"},
				{ID: uuid.NewString(), Name: "葱", Amount: 1, Unit: "根"},
			},
			Steps: []model.RecipeStep{
				{ID: uuid.NewString(), Text: "鸡蛋炒散盛出"},
				{ID: uuid.NewString(), Text: "米饭下锅压散炒热"},
				{ID: uuid.NewString(), Text: "倒回鸡蛋,加盐和葱花炒匀"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			HouseholdID: model.OfflineHouseholdID,
			Title:       "红烧肉",
			Description: "周末慢慢炖的一道硬菜",
			Duration:    90,
			Difficulty:  model.DifficultyMedium,
			Tags:        []string{"硬菜", "炖菜"},
			Servings:    4,
			Ingredients: []model.IngredientItem{
				{ID: uuid.NewString(), Name: "五花肉", Amount: 500, Unit: "克"},
				{ID: uuid.NewString(), Name: "冰糖", Amount: 30, Unit: "克"},
				{ID: uuid.NewString(), Name: "生抽", Amount: 2, Unit: "勺"},
				{ID: uuid.NewString(), Name: "老抽", Amount: 1, Unit: "勺"},
			},
			Steps: []model.RecipeStep{
				{ID: uuid.NewString(), Text: "五花肉切块,冷水下锅焯水"},
				{ID: uuid.NewString(), Text: "小火炒糖色,下肉翻炒上色"},
				{ID: uuid.NewString(), Text: "加生抽老抽和热水,小火炖一小时", Tip: "水要一次加够"},
				{ID: uuid.NewString(), Text: "大火收汁"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func sampleInventory(now time.Time) []model.InventoryItem {
	return []model.InventoryItem{
		{
			ID: uuid.NewString(), HouseholdID: model.OfflineHouseholdID,
			Name: "鸡蛋", Quantity: 10, Unit: "个",
			Location: model.LocationRefrigerated, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), HouseholdID: model.OfflineHouseholdID,
			Name: "米饭", Quantity: 2, Unit: "碗",
			Location: model.LocationRefrigerated, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), HouseholdID: model.OfflineHouseholdID,
			Name: "大米", Quantity: 5, Unit: "千克",
			Location: model.LocationAmbient, CreatedAt: now, UpdatedAt: now,
		},
	}
}
