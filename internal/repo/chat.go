package repo

import (
	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type Chat struct {
	store  *localstore.Store
	engine *syncer.Engine
}

func NewChat(store *localstore.Store, engine *syncer.Engine) *Chat {
	return &Chat{store: store, engine: engine}
}

// CreateLog starts a conversation, optionally tied to a recipe.
func (r *Chat) CreateLog(householdID, recipeID, title string) (*model.ChatLog, error) {
	now := nowUTC()
	log := model.ChatLog{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		RecipeID:    recipeID,
		Title:       title,
		Messages:    []model.ChatMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.PutChatLog(log); err != nil {
		return nil, err
	}
	r.engine.PushChatLog(log)
	return &log, nil
}

// AddMessage appends to the conversation and bumps its updated time.
func (r *Chat) AddMessage(logID string, role model.ChatRole, content string) (*model.ChatLog, error) {
	log, err := r.store.GetChatLog(logID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNotFound
	}

	now := nowUTC()
	log.Messages = append(log.Messages, model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	})
	log.UpdatedAt = now

	if err := r.store.PutChatLog(*log); err != nil {
		return nil, err
	}
	r.engine.PushChatLog(*log)
	return log, nil
}

func (r *Chat) Delete(id string) error {
	log, err := r.store.GetChatLog(id)
	if err != nil {
		return err
	}
	if log == nil {
		return ErrNotFound
	}
	if err := r.store.DeleteChatLog(id); err != nil {
		return err
	}
	r.engine.PushDelete(log.HouseholdID, rowmap.TableChatLogs, id)
	return nil
}

func (r *Chat) Get(id string) (*model.ChatLog, error) {
	log, err := r.store.GetChatLog(id)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNotFound
	}
	return log, nil
}

func (r *Chat) List(householdID string) ([]model.ChatLog, error) {
	return r.store.ListChatLogs(householdID)
}

func (r *Chat) ListByRecipe(householdID, recipeID string) ([]model.ChatLog, error) {
	return r.store.ListChatLogsByRecipe(householdID, recipeID)
}
