package repo

import (
	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type Recipes struct {
	store  *localstore.Store
	engine *syncer.Engine
}

func NewRecipes(store *localstore.Store, engine *syncer.Engine) *Recipes {
	return &Recipes{store: store, engine: engine}
}

type RecipeInput struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Duration    int                    `json:"duration"`
	Difficulty  model.Difficulty       `json:"difficulty"`
	Tags        []string               `json:"tags"`
	Servings    int                    `json:"servings"`
	Ingredients []model.IngredientItem `json:"ingredients"`
	Steps       []model.RecipeStep     `json:"steps"`
}

func (r *Recipes) Create(householdID string, in RecipeInput) (*model.Recipe, error) {
	now := nowUTC()
	rec := model.Recipe{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		Difficulty:  in.Difficulty,
		Tags:        in.Tags,
		Servings:    in.Servings,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	normalizeRecipe(&rec)

	if err := r.store.PutRecipe(rec); err != nil {
		return nil, err
	}
	r.engine.PushRecipe(rec)
	return &rec, nil
}

func (r *Recipes) Update(id string, in RecipeInput) (*model.Recipe, error) {
	rec, err := r.store.GetRecipe(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	rec.Title = in.Title
	rec.Description = in.Description
	rec.Duration = in.Duration
	rec.Difficulty = in.Difficulty
	rec.Tags = in.Tags
	rec.Servings = in.Servings
	rec.Ingredients = in.Ingredients
	rec.Steps = in.Steps
	rec.UpdatedAt = nowUTC()
	normalizeRecipe(rec)

	if err := r.store.PutRecipe(*rec); err != nil {
		return nil, err
	}
	r.engine.PushRecipe(*rec)
	return rec, nil
}

func (r *Recipes) Delete(id string) error {
	rec, err := r.store.GetRecipe(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if err := r.store.DeleteRecipe(id); err != nil {
		return err
	}
	r.engine.PushDelete(rec.HouseholdID, rowmap.TableRecipes, id)
	return nil
}

func (r *Recipes) Get(id string) (*model.Recipe, error) {
	rec, err := r.store.GetRecipe(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *Recipes) List(householdID string) ([]model.Recipe, error) {
	return r.store.ListRecipes(householdID)
}

// normalizeRecipe fills defaults and assigns ids to nested items that were
// created in this call.
func normalizeRecipe(rec *model.Recipe) {
	if rec.Difficulty == "" {
		rec.Difficulty = model.DifficultyEasy
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.Ingredients == nil {
		rec.Ingredients = []model.IngredientItem{}
	}
	if rec.Steps == nil {
		rec.Steps = []model.RecipeStep{}
	}
	for i := range rec.Ingredients {
		if rec.Ingredients[i].ID == "" {
			rec.Ingredients[i].ID = uuid.NewString()
		}
	}
	for i := range rec.Steps {
		if rec.Steps[i].ID == "" {
			rec.Steps[i].ID = uuid.NewString()
		}
	}
}
