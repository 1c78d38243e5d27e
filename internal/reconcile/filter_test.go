package reconcile

import (
	"math/rand"
	"testing"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

func sampleRecipes() []model.Recipe {
	return []model.Recipe{
		{ID: "1", Title: "番茄炒蛋", Description: "家常快手菜", Duration: 15, Tags: []string{"家常", "快手"}},
		{ID: "2", Title: "红烧肉", Description: "经典硬菜", Duration: 90, Tags: []string{"硬菜"}},
		{ID: "3", Title: "凉拌黄瓜", Duration: 10, Tags: []string{"凉菜", "快手"}},
	}
}

func TestFilterRecipesKeyword(t *testing.T) {
	got := FilterRecipes(sampleRecipes(), Filter{Keyword: "番茄"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %+v, want recipe 1", got)
	}

	// Keyword matches descriptions and tags too.
	got = FilterRecipes(sampleRecipes(), Filter{Keyword: "硬菜"})
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("got %+v, want recipe 2", got)
	}
}

func TestFilterRecipesTags(t *testing.T) {
	got := FilterRecipes(sampleRecipes(), Filter{Tags: []string{"快手"}})
	if len(got) != 2 {
		t.Errorf("got %d recipes, want 2", len(got))
	}
}

func TestFilterRecipesMaxDuration(t *testing.T) {
	got := FilterRecipes(sampleRecipes(), Filter{MaxDuration: 20})
	if len(got) != 2 {
		t.Errorf("got %d recipes, want 2", len(got))
	}

	// Zero means no limit.
	got = FilterRecipes(sampleRecipes(), Filter{})
	if len(got) != 3 {
		t.Errorf("got %d recipes, want all 3", len(got))
	}
}

func TestFilterRecipesCombined(t *testing.T) {
	got := FilterRecipes(sampleRecipes(), Filter{Tags: []string{"快手"}, MaxDuration: 12})
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("got %+v, want recipe 3", got)
	}
}

func TestRecommendCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := Recommend(sampleRecipes(), RecommendParams{Count: 2, Rand: rng})
	if len(got) != 2 {
		t.Fatalf("got %d recipes, want 2", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Error("recommended the same recipe twice")
	}
}

func TestRecommendFallsBackWhenNothingMatches(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := Recommend(sampleRecipes(), RecommendParams{Tags: []string{"不存在"}, Count: 1, Rand: rng})
	if len(got) != 1 {
		t.Errorf("got %d recipes, want 1 from the fallback pool", len(got))
	}
}

func TestRecommendCappedAtPoolSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := Recommend(sampleRecipes(), RecommendParams{Count: 10, Rand: rng})
	if len(got) != 3 {
		t.Errorf("got %d recipes, want 3", len(got))
	}
}
