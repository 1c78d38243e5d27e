package repo

import (
	"time"

	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type Inventory struct {
	store  *localstore.Store
	engine *syncer.Engine
}

func NewInventory(store *localstore.Store, engine *syncer.Engine) *Inventory {
	return &Inventory{store: store, engine: engine}
}

type InventoryInput struct {
	Name       string         `json:"name"`
	Quantity   float64        `json:"quantity"`
	Unit       string         `json:"unit"`
	Location   model.Location `json:"location"`
	ExpiryDate *time.Time     `json:"expiryDate"`
	Notes      string         `json:"notes"`
}

func (r *Inventory) Create(householdID string, in InventoryInput) (*model.InventoryItem, error) {
	now := nowUTC()
	item := model.InventoryItem{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Name:        in.Name,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		Location:    in.Location,
		ExpiryDate:  in.ExpiryDate,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Location == "" {
		item.Location = model.LocationAmbient
	}

	if err := r.store.PutInventoryItem(item); err != nil {
		return nil, err
	}
	r.engine.PushInventoryItem(item)
	return &item, nil
}

func (r *Inventory) Update(id string, in InventoryInput) (*model.InventoryItem, error) {
	item, err := r.store.GetInventoryItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	item.Name = in.Name
	item.Quantity = in.Quantity
	item.Unit = in.Unit
	item.Location = in.Location
	item.ExpiryDate = in.ExpiryDate
	item.Notes = in.Notes
	item.UpdatedAt = nowUTC()
	if item.Location == "" {
		item.Location = model.LocationAmbient
	}

	if err := r.store.PutInventoryItem(*item); err != nil {
		return nil, err
	}
	r.engine.PushInventoryItem(*item)
	return item, nil
}

func (r *Inventory) Delete(id string) error {
	item, err := r.store.GetInventoryItem(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if err := r.store.DeleteInventoryItem(id); err != nil {
		return err
	}
	r.engine.PushDelete(item.HouseholdID, rowmap.TableInventory, id)
	return nil
}

func (r *Inventory) Get(id string) (*model.InventoryItem, error) {
	item, err := r.store.GetInventoryItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (r *Inventory) List(householdID string) ([]model.InventoryItem, error) {
	return r.store.ListInventory(householdID)
}

// ListExpiringWithin returns items whose expiry date falls inside the next
// given number of days. Items without an expiry date never show up.
func (r *Inventory) ListExpiringWithin(householdID string, days int) ([]model.InventoryItem, error) {
	cutoff := nowUTC().AddDate(0, 0, days)
	return r.store.ListInventoryExpiringBefore(householdID, cutoff)
}
