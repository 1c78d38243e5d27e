package repo

import (
	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/reconcile"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type Shopping struct {
	store  *localstore.Store
	engine *syncer.Engine
}

func NewShopping(store *localstore.Store, engine *syncer.Engine) *Shopping {
	return &Shopping{store: store, engine: engine}
}

type ShoppingInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (r *Shopping) Create(householdID string, in ShoppingInput) (*model.ShoppingListItem, error) {
	now := nowUTC()
	item := model.ShoppingListItem{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Name:        in.Name,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.PutShoppingItem(item); err != nil {
		return nil, err
	}
	r.engine.PushShoppingItem(item)
	return &item, nil
}

func (r *Shopping) Update(id string, in ShoppingInput) (*model.ShoppingListItem, error) {
	item, err := r.store.GetShoppingItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	item.Name = in.Name
	item.Quantity = in.Quantity
	item.Unit = in.Unit
	item.UpdatedAt = nowUTC()

	if err := r.store.PutShoppingItem(*item); err != nil {
		return nil, err
	}
	r.engine.PushShoppingItem(*item)
	return item, nil
}

func (r *Shopping) Delete(id string) error {
	item, err := r.store.GetShoppingItem(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if err := r.store.DeleteShoppingItem(id); err != nil {
		return err
	}
	r.engine.PushDelete(item.HouseholdID, rowmap.TableShoppingList, id)
	return nil
}

func (r *Shopping) List(householdID string) ([]model.ShoppingListItem, error) {
	return r.store.ListShoppingItems(householdID)
}

// ToggleBought flips the bought flag.
func (r *Shopping) ToggleBought(id string) (*model.ShoppingListItem, error) {
	item, err := r.store.GetShoppingItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	item.IsBought = !item.IsBought
	item.UpdatedAt = nowUTC()

	if err := r.store.PutShoppingItem(*item); err != nil {
		return nil, err
	}
	r.engine.PushShoppingItem(*item)
	return item, nil
}

// ClearBought removes every bought item and mirrors each removal remotely,
// so other household members see the list shrink too.
func (r *Shopping) ClearBought(householdID string) (int, error) {
	deleted, err := r.store.DeleteBoughtShoppingItems(householdID)
	if err != nil {
		return 0, err
	}
	for _, id := range deleted {
		r.engine.PushDelete(householdID, rowmap.TableShoppingList, id)
	}
	return len(deleted), nil
}

// AddForRecipe turns a recipe's missing ingredients into shopping items,
// each carrying the shortfall amount and a back-reference to the recipe.
func (r *Shopping) AddForRecipe(householdID, recipeID string, missing []reconcile.MissingItem) ([]model.ShoppingListItem, error) {
	now := nowUTC()
	items := make([]model.ShoppingListItem, 0, len(missing))
	for _, m := range missing {
		items = append(items, model.ShoppingListItem{
			ID:             uuid.NewString(),
			HouseholdID:    householdID,
			Name:           m.Name,
			Quantity:       m.Need - m.Current,
			Unit:           m.Unit,
			SourceRecipeID: recipeID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := r.store.BulkPutShoppingItems(items); err != nil {
		return nil, err
	}
	for _, item := range items {
		r.engine.PushShoppingItem(item)
	}
	return items, nil
}
