package reconcile

import (
	"math/rand"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const defaultRecommendCount = 3

type RecommendParams struct {
	MaxDuration int
	Tags        []string
	Count       int
	Rand        *rand.Rand // optional; defaults to a time-seeded source
}

// Recommend picks random recipes from the pool matching the filters. When
// nothing matches it falls back to the whole collection so the user always
// gets a suggestion.
func Recommend(recipes []model.Recipe, p RecommendParams) []model.Recipe {
	count := p.Count
	if count <= 0 {
		count = defaultRecommendCount
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pool := FilterRecipes(recipes, Filter{Tags: p.Tags, MaxDuration: p.MaxDuration})
	if len(pool) == 0 {
		pool = recipes
	}
	if count > len(pool) {
		count = len(pool)
	}
	return pickRandom(rng, pool, count)
}

func pickRandom(rng *rand.Rand, recipes []model.Recipe, count int) []model.Recipe {
	pool := make([]model.Recipe, len(recipes))
	copy(pool, recipes)

	out := make([]model.Recipe, 0, count)
	for len(pool) > 0 && len(out) < count {
		i := rng.Intn(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}
