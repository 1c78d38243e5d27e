package seed

import (
	"log/slog"
	"testing"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
)

func TestRunSeedsOnce(t *testing.T) {
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	logger := slog.New(slog.DiscardHandler)

	if err := Run(store, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}
	recipes, err := store.ListRecipes(model.OfflineHouseholdID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) == 0 {
		t.Fatal("nothing was seeded")
	}

	// A second run must not duplicate anything.
	if err := Run(store, logger); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, err := store.ListRecipes(model.OfflineHouseholdID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(again) != len(recipes) {
		t.Errorf("got %d recipes after reseed, want %d", len(again), len(recipes))
	}
}
