package repo

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/reconcile"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type testEnv struct {
	store  *localstore.Store
	engine *syncer.Engine
	mem    *remote.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mem := remote.NewMemory()
	engine := syncer.New(store, mem, slog.New(slog.DiscardHandler))
	t.Cleanup(engine.Close)
	return &testEnv{store: store, engine: engine, mem: mem}
}

func TestRecipeCreate(t *testing.T) {
	env := newTestEnv(t)
	recipes := NewRecipes(env.store, env.engine)

	rec, err := recipes.Create("h1", RecipeInput{
		Title: "番茄炒蛋",
		Ingredients: []model.IngredientItem{
			{Name: "鸡蛋", Amount: 3, Unit: "个"},
		},
		Steps: []model.RecipeStep{{Text: "打散鸡蛋"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" {
		t.Error("no id assigned")
	}
	if rec.Difficulty != model.DifficultyEasy {
		t.Errorf("difficulty = %q, want the easy default", rec.Difficulty)
	}
	if rec.Ingredients[0].ID == "" || rec.Steps[0].ID == "" {
		t.Error("nested items were not assigned ids")
	}
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", rec.CreatedAt, rec.UpdatedAt)
	}

	env.engine.Flush()
	if _, ok := env.mem.Row(rowmap.TableRecipes, rec.ID); !ok {
		t.Error("create was not pushed to the remote store")
	}
}

func TestRecipeUpdateMissing(t *testing.T) {
	env := newTestEnv(t)
	recipes := NewRecipes(env.store, env.engine)

	if _, err := recipes.Update("nope", RecipeInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := recipes.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}

func TestRecipeDeletePushesRemoteDelete(t *testing.T) {
	env := newTestEnv(t)
	recipes := NewRecipes(env.store, env.engine)

	rec, err := recipes.Create("h1", RecipeInput{Title: "番茄炒蛋"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := recipes.Delete(rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	env.engine.Flush()
	if env.mem.Count(rowmap.TableRecipes) != 0 {
		t.Error("remote row survived the delete")
	}
}

func TestOfflineRecordsStayLocal(t *testing.T) {
	env := newTestEnv(t)
	recipes := NewRecipes(env.store, env.engine)

	if _, err := recipes.Create(model.OfflineHouseholdID, RecipeInput{Title: "私房菜"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	env.engine.Flush()
	if env.mem.Count(rowmap.TableRecipes) != 0 {
		t.Error("offline record was pushed to the remote store")
	}
}

func TestInventoryDefaults(t *testing.T) {
	env := newTestEnv(t)
	inventory := NewInventory(env.store, env.engine)

	item, err := inventory.Create("h1", InventoryInput{Name: "大米", Quantity: 5, Unit: "kg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Location != model.LocationAmbient {
		t.Errorf("location = %q, want the ambient default", item.Location)
	}
}

func TestToggleBought(t *testing.T) {
	env := newTestEnv(t)
	shopping := NewShopping(env.store, env.engine)

	item, err := shopping.Create("h1", ShoppingInput{Name: "葱", Quantity: 1, Unit: "把"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := shopping.ToggleBought(item.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsBought {
		t.Error("toggle did not mark the item bought")
	}

	toggled, err = shopping.ToggleBought(item.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if toggled.IsBought {
		t.Error("second toggle did not clear the flag")
	}
}

func TestClearBought(t *testing.T) {
	env := newTestEnv(t)
	shopping := NewShopping(env.store, env.engine)

	a, _ := shopping.Create("h1", ShoppingInput{Name: "葱", Quantity: 1, Unit: "把"})
	b, _ := shopping.Create("h1", ShoppingInput{Name: "姜", Quantity: 1, Unit: "块"})
	if _, err := shopping.ToggleBought(a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	n, err := shopping.ClearBought("h1")
	if err != nil {
		t.Fatalf("clear bought: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d items, want 1", n)
	}

	list, err := shopping.List("h1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("remaining = %+v, want only the unbought item", list)
	}

	// The removals reach the remote list too.
	env.engine.Flush()
	if _, ok := env.mem.Row(rowmap.TableShoppingList, a.ID); ok {
		t.Error("cleared item still has a remote row")
	}
	if _, ok := env.mem.Row(rowmap.TableShoppingList, b.ID); !ok {
		t.Error("unbought item lost its remote row")
	}
}

func TestAddForRecipe(t *testing.T) {
	env := newTestEnv(t)
	shopping := NewShopping(env.store, env.engine)

	missing := []reconcile.MissingItem{
		{Name: "番茄", Need: 2, Current: 1, Unit: "个"},
		{Name: "葱", Need: 1, Current: 0, Unit: "把"},
	}
	items, err := shopping.AddForRecipe("h1", "r1", missing)
	if err != nil {
		t.Fatalf("add for recipe: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Quantity != 1 {
		t.Errorf("quantity = %v, want the shortfall of 1", items[0].Quantity)
	}
	if items[0].SourceRecipeID != "r1" {
		t.Errorf("sourceRecipeId = %q, want r1", items[0].SourceRecipeID)
	}
}

func TestChatAddMessage(t *testing.T) {
	env := newTestEnv(t)
	chat := NewChat(env.store, env.engine)

	log, err := chat.CreateLog("h1", "r1", "做法求助")
	if err != nil {
		t.Fatalf("create log: %v", err)
	}

	updated, err := chat.AddMessage(log.ID, model.RoleUser, "番茄要去皮吗")
	if err != nil {
		t.Fatalf("add message: %v", err)
	}
	if len(updated.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(updated.Messages))
	}
	msg := updated.Messages[0]
	if msg.ID == "" || msg.Role != model.RoleUser || msg.Content != "番茄要去皮吗" {
		t.Errorf("message = %+v", msg)
	}
	if updated.UpdatedAt.Before(log.UpdatedAt) {
		t.Error("updated time did not advance")
	}

	if _, err := chat.AddMessage("nope", model.RoleUser, "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	byRecipe, err := chat.ListByRecipe("h1", "r1")
	if err != nil {
		t.Fatalf("list by recipe: %v", err)
	}
	if len(byRecipe) != 1 {
		t.Errorf("got %d logs, want 1", len(byRecipe))
	}
}
