package reconcile

import (
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

// Matching is by exact trimmed name only. There is no fuzzy matching and no
// unit conversion, so a typo or a unit mismatch between a recipe and the
// pantry goes undetected. Known limitation, kept deliberately simple.

type AvailableItem struct {
	Name string  `json:"name"`
	Used float64 `json:"used"`
	Unit string  `json:"unit"`
}

type MissingItem struct {
	Name    string  `json:"name"`
	Need    float64 `json:"need"`
	Current float64 `json:"current"`
	Unit    string  `json:"unit"`
}

type Diff struct {
	Available []AvailableItem `json:"available"`
	Missing   []MissingItem   `json:"missing"`
}

// IngredientDiff splits a recipe's ingredient list into what the inventory
// covers and what is short. Every ingredient lands in exactly one bucket.
func IngredientDiff(ingredients []model.IngredientItem, inventory []model.InventoryItem) Diff {
	stock := stockByName(inventory)

	diff := Diff{
		Available: []AvailableItem{},
		Missing:   []MissingItem{},
	}
	for _, ing := range ingredients {
		current := stock[strings.TrimSpace(ing.Name)]
		if current < ing.Amount {
			diff.Missing = append(diff.Missing, MissingItem{
				Name:    ing.Name,
				Need:    ing.Amount,
				Current: current,
				Unit:    ing.Unit,
			})
		} else {
			diff.Available = append(diff.Available, AvailableItem{
				Name: ing.Name,
				Used: ing.Amount,
				Unit: ing.Unit,
			})
		}
	}
	return diff
}

// closeMissingLimit is the most ingredients a recipe may be short before it
// drops out of the "close" bucket.
const closeMissingLimit = 2

type Categorized struct {
	CanCook []model.Recipe `json:"canCook"`
	Close   []model.Recipe `json:"close"`
}

// CategorizeByInventory partitions recipes into fully coverable and
// nearly coverable (short by at most closeMissingLimit ingredients).
// Recipes short by more are excluded. Input order is preserved within each
// bucket. A recipe with no ingredient list at all (partially synced data)
// is skipped rather than miscounted.
func CategorizeByInventory(recipes []model.Recipe, inventory []model.InventoryItem) Categorized {
	stock := stockByName(inventory)

	out := Categorized{
		CanCook: []model.Recipe{},
		Close:   []model.Recipe{},
	}
	for _, recipe := range recipes {
		if recipe.Ingredients == nil {
			continue
		}
		missing := 0
		for _, ing := range recipe.Ingredients {
			if stock[strings.TrimSpace(ing.Name)] < ing.Amount {
				missing++
			}
		}
		switch {
		case missing == 0:
			out.CanCook = append(out.CanCook, recipe)
		case missing <= closeMissingLimit:
			out.Close = append(out.Close, recipe)
		}
	}
	return out
}

// stockByName indexes on-hand quantity by trimmed item name. When two
// inventory rows share a name the first one wins.
func stockByName(inventory []model.InventoryItem) map[string]float64 {
	stock := make(map[string]float64, len(inventory))
	for _, item := range inventory {
		name := strings.TrimSpace(item.Name)
		if _, ok := stock[name]; !ok {
			stock[name] = item.Quantity
		}
	}
	return stock
}
