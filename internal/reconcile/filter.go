package reconcile

import (
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

type Filter struct {
	Keyword     string
	Tags        []string
	MaxDuration int
}

// FilterRecipes keeps recipes matching every set criterion. The keyword is
// a case-insensitive substring match over title, description, and tags; the
// tag filter matches any of the given tags; MaxDuration of 0 means no limit.
func FilterRecipes(recipes []model.Recipe, f Filter) []model.Recipe {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	var out []model.Recipe
	for _, r := range recipes {
		if keyword != "" {
			text := strings.ToLower(r.Title + r.Description + strings.Join(r.Tags, ""))
			if !strings.Contains(text, keyword) {
				continue
			}
		}
		if len(f.Tags) > 0 && !hasAnyTag(r.Tags, f.Tags) {
			continue
		}
		if f.MaxDuration > 0 && r.Duration > f.MaxDuration {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasAnyTag(recipeTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range recipeTags {
			if t == w {
				return true
			}
		}
	}
	return false
}
