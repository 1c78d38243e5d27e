package reconcile

import (
	"testing"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

func inv(name string, qty float64) model.InventoryItem {
	return model.InventoryItem{Name: name, Quantity: qty, Unit: "个"}
}

func ing(name string, amount float64) model.IngredientItem {
	return model.IngredientItem{Name: name, Amount: amount, Unit: "个"}
}

func TestIngredientDiff(t *testing.T) {
	ingredients := []model.IngredientItem{
		ing("鸡蛋", 3),
		ing("番茄", 2),
		ing("葱", 1),
	}
	inventory := []model.InventoryItem{
		inv("鸡蛋", 5),
		inv("番茄", 1),
	}

	diff := IngredientDiff(ingredients, inventory)

	if len(diff.Available) != 1 || diff.Available[0].Name != "鸡蛋" {
		t.Fatalf("available = %+v, want 鸡蛋 only", diff.Available)
	}
	if diff.Available[0].Used != 3 {
		t.Errorf("used = %v, want 3", diff.Available[0].Used)
	}

	if len(diff.Missing) != 2 {
		t.Fatalf("missing = %+v, want 番茄 and 葱", diff.Missing)
	}
	tomato := diff.Missing[0]
	if tomato.Name != "番茄" || tomato.Need != 2 || tomato.Current != 1 {
		t.Errorf("tomato = %+v, want need 2 current 1", tomato)
	}
	onion := diff.Missing[1]
	if onion.Name != "葱" || onion.Current != 0 {
		t.Errorf("onion = %+v, want current 0", onion)
	}
}

func TestIngredientDiffPartition(t *testing.T) {
	ingredients := []model.IngredientItem{
		ing("鸡蛋", 2), ing("面粉", 500), ing("糖", 50), ing("盐", 1),
	}
	inventory := []model.InventoryItem{
		inv("鸡蛋", 10), inv("糖", 20),
	}

	diff := IngredientDiff(ingredients, inventory)
	if got := len(diff.Available) + len(diff.Missing); got != len(ingredients) {
		t.Errorf("partition size = %d, want %d", got, len(ingredients))
	}
}

func TestIngredientDiffZeroAmount(t *testing.T) {
	diff := IngredientDiff([]model.IngredientItem{ing("香菜", 0)}, nil)
	if len(diff.Missing) != 0 {
		t.Errorf("zero-amount ingredient reported missing: %+v", diff.Missing)
	}
	if len(diff.Available) != 1 {
		t.Errorf("available = %+v, want the zero-amount ingredient", diff.Available)
	}
}

func TestIngredientDiffTrimsNames(t *testing.T) {
	diff := IngredientDiff(
		[]model.IngredientItem{ing(" 鸡蛋", 1)},
		[]model.InventoryItem{inv("鸡蛋 ", 2)},
	)
	if len(diff.Available) != 1 {
		t.Errorf("trimmed names should match, got missing %+v", diff.Missing)
	}
}

func TestIngredientDiffNoFuzzyMatch(t *testing.T) {
	diff := IngredientDiff(
		[]model.IngredientItem{ing("西红柿", 1)},
		[]model.InventoryItem{inv("番茄", 5)},
	)
	if len(diff.Missing) != 1 {
		t.Errorf("different names must not match, got available %+v", diff.Available)
	}
}

func TestIngredientDiffEmptyInputs(t *testing.T) {
	diff := IngredientDiff(nil, nil)
	if diff.Available == nil || diff.Missing == nil {
		t.Error("buckets should be empty, not nil")
	}
	if len(diff.Available) != 0 || len(diff.Missing) != 0 {
		t.Errorf("diff = %+v, want empty", diff)
	}
}

func recipeWith(title string, ingredients ...model.IngredientItem) model.Recipe {
	if ingredients == nil {
		ingredients = []model.IngredientItem{}
	}
	return model.Recipe{ID: title, Title: title, Ingredients: ingredients}
}

func TestCategorizeByInventory(t *testing.T) {
	recipes := []model.Recipe{
		recipeWith("番茄炒蛋", ing("鸡蛋", 3), ing("番茄", 2)),
		recipeWith("蛋炒饭", ing("鸡蛋", 2), ing("米饭", 1), ing("葱", 1)),
		recipeWith("红烧肉", ing("五花肉", 500), ing("冰糖", 30), ing("酱油", 20)),
	}
	inventory := []model.InventoryItem{
		inv("鸡蛋", 10), inv("番茄", 3), inv("米饭", 2),
	}

	got := CategorizeByInventory(recipes, inventory)

	if len(got.CanCook) != 1 || got.CanCook[0].Title != "番茄炒蛋" {
		t.Errorf("canCook = %+v, want 番茄炒蛋", got.CanCook)
	}
	if len(got.Close) != 1 || got.Close[0].Title != "蛋炒饭" {
		t.Errorf("close = %+v, want 蛋炒饭", got.Close)
	}
}

func TestCategorizeSkipsRecipesWithoutIngredients(t *testing.T) {
	recipes := []model.Recipe{
		{ID: "broken", Title: "broken"}, // no ingredient list at all
		recipeWith("空菜谱"),              // empty list cooks with anything
	}

	got := CategorizeByInventory(recipes, nil)
	if len(got.CanCook) != 1 || got.CanCook[0].Title != "空菜谱" {
		t.Errorf("canCook = %+v, want 空菜谱 only", got.CanCook)
	}
	if len(got.Close) != 0 {
		t.Errorf("close = %+v, want empty", got.Close)
	}
}

func TestCategorizeMonotonic(t *testing.T) {
	recipes := []model.Recipe{
		recipeWith("a", ing("鸡蛋", 2)),
		recipeWith("b", ing("鸡蛋", 2), ing("番茄", 1)),
		recipeWith("c", ing("鸡蛋", 2), ing("番茄", 1), ing("葱", 1), ing("蒜", 1)),
	}

	smaller := CategorizeByInventory(recipes, []model.InventoryItem{inv("鸡蛋", 5)})
	larger := CategorizeByInventory(recipes, []model.InventoryItem{
		inv("鸡蛋", 5), inv("番茄", 5), inv("葱", 5),
	})

	// Adding inventory can only move recipes toward cookable.
	if len(larger.CanCook) < len(smaller.CanCook) {
		t.Errorf("canCook shrank from %d to %d after adding inventory",
			len(smaller.CanCook), len(larger.CanCook))
	}
	for _, r := range smaller.CanCook {
		found := false
		for _, lr := range larger.CanCook {
			if lr.ID == r.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("recipe %s left canCook after adding inventory", r.ID)
		}
	}
}

func TestCategorizePreservesOrder(t *testing.T) {
	recipes := []model.Recipe{
		recipeWith("z", ing("鸡蛋", 1)),
		recipeWith("a", ing("鸡蛋", 1)),
	}
	got := CategorizeByInventory(recipes, []model.InventoryItem{inv("鸡蛋", 5)})
	if len(got.CanCook) != 2 || got.CanCook[0].Title != "z" {
		t.Errorf("canCook = %+v, want input order preserved", got.CanCook)
	}
}
