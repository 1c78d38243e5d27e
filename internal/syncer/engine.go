// Package syncer keeps the local store and the remote object store aligned:
// a full pull when a household becomes active, fire-and-forget pushes after
// local writes, and a realtime feed applying remote changes as they happen.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
)

// State of the realtime subscription.
type State string

const (
	StateUnsubscribed State = "unsubscribed"
	StateSubscribing  State = "subscribing"
	StateActive       State = "active"
)

// outboxSize bounds the number of queued pushes. Writes past a full outbox
// are dropped with a log line; the next full pull reconciles the gap.
const outboxSize = 256

const pushTimeout = 10 * time.Second

type opKind int

const (
	opUpsert opKind = iota
	opDelete
)

type op struct {
	kind  opKind
	table string
	id    string
	row   json.RawMessage
}

// Engine drives sync for at most one household at a time. The zero value is
// not usable; construct with New, which starts the push worker.
type Engine struct {
	local  *localstore.Store
	remote remote.Store
	logger *slog.Logger

	outbox  chan op
	done    chan struct{}
	close   sync.Once
	pending sync.WaitGroup

	mu     sync.Mutex
	active string
	state  State
	sub    *remote.Subscription
}

func New(local *localstore.Store, rs remote.Store, logger *slog.Logger) *Engine {
	e := &Engine{
		local:  local,
		remote: rs,
		logger: logger.With("component", "sync"),
		outbox: make(chan op, outboxSize),
		done:   make(chan struct{}),
		state:  StateUnsubscribed,
	}
	go e.pushWorker()
	return e
}

// Close stops the push worker after draining queued pushes and drops any
// realtime subscription.
func (e *Engine) Close() {
	e.close.Do(func() {
		e.Deactivate()
		close(e.outbox)
		<-e.done
	})
}

// Pull replaces nothing and deletes nothing: it upserts every remote row of
// every table into the local store. Callers cancel ctx to abandon a pull
// whose results should no longer be applied.
func (e *Engine) Pull(ctx context.Context, householdID string) error {
	if householdID == model.OfflineHouseholdID {
		return nil
	}
	for _, table := range rowmap.Tables {
		rows, err := e.remote.Select(ctx, table, householdID)
		if err != nil {
			return fmt.Errorf("pull %s: %w", table, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.storeRows(table, rows); err != nil {
			return fmt.Errorf("pull %s: %w", table, err)
		}
	}
	return nil
}

// Activate makes householdID the sync target and opens its realtime feed.
// Any previous subscription is dropped first. The offline household never
// subscribes. A failed subscribe leaves the engine unsubscribed; there is
// no retry, the next activation tries again.
func (e *Engine) Activate(ctx context.Context, householdID string) error {
	e.Deactivate()

	e.mu.Lock()
	e.active = householdID
	if householdID == model.OfflineHouseholdID {
		e.mu.Unlock()
		return nil
	}
	e.state = StateSubscribing
	e.mu.Unlock()

	sub, err := e.remote.Subscribe(ctx, householdID)
	if err != nil {
		e.mu.Lock()
		e.state = StateUnsubscribed
		e.mu.Unlock()
		return fmt.Errorf("activate %s: %w", householdID, err)
	}

	e.mu.Lock()
	if e.active != householdID {
		// Deactivated or switched while dialing.
		e.mu.Unlock()
		sub.Close()
		return nil
	}
	e.sub = sub
	e.state = StateActive
	e.mu.Unlock()

	go e.consume(householdID, sub)
	e.logger.Info("realtime subscription active", "household_id", householdID)
	return nil
}

// Deactivate drops the subscription and clears the active household.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	sub := e.sub
	e.sub = nil
	e.active = ""
	e.state = StateUnsubscribed
	e.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) ActiveHousehold() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Status is a snapshot for the sync status endpoint.
type Status struct {
	State             State  `json:"state"`
	ActiveHouseholdID string `json:"activeHouseholdId"`
	PendingPushes     int    `json:"pendingPushes"`
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:             e.state,
		ActiveHouseholdID: e.active,
		PendingPushes:     len(e.outbox),
	}
}

// PushRecipe queues a remote upsert for the recipe. Offline records never
// leave the device.
func (e *Engine) PushRecipe(r model.Recipe) {
	if r.HouseholdID == model.OfflineHouseholdID {
		return
	}
	raw, err := rowmap.RecipeToRow(r)
	if err != nil {
		e.logger.Error("encode recipe for push", "id", r.ID, "error", err)
		return
	}
	e.enqueue(op{kind: opUpsert, table: rowmap.TableRecipes, id: r.ID, row: raw})
}

func (e *Engine) PushInventoryItem(item model.InventoryItem) {
	if item.HouseholdID == model.OfflineHouseholdID {
		return
	}
	raw, err := rowmap.InventoryToRow(item)
	if err != nil {
		e.logger.Error("encode inventory item for push", "id", item.ID, "error", err)
		return
	}
	e.enqueue(op{kind: opUpsert, table: rowmap.TableInventory, id: item.ID, row: raw})
}

func (e *Engine) PushShoppingItem(item model.ShoppingListItem) {
	if item.HouseholdID == model.OfflineHouseholdID {
		return
	}
	raw, err := rowmap.ShoppingToRow(item)
	if err != nil {
		e.logger.Error("encode shopping item for push", "id", item.ID, "error", err)
		return
	}
	e.enqueue(op{kind: opUpsert, table: rowmap.TableShoppingList, id: item.ID, row: raw})
}

func (e *Engine) PushChatLog(log model.ChatLog) {
	if log.HouseholdID == model.OfflineHouseholdID {
		return
	}
	raw, err := rowmap.ChatLogToRow(log)
	if err != nil {
		e.logger.Error("encode chat log for push", "id", log.ID, "error", err)
		return
	}
	e.enqueue(op{kind: opUpsert, table: rowmap.TableChatLogs, id: log.ID, row: raw})
}

// PushDelete queues a remote delete. It shares the outbox with upserts, so
// a create followed by a delete reaches the backend in that order.
func (e *Engine) PushDelete(householdID, table, id string) {
	if householdID == model.OfflineHouseholdID {
		return
	}
	e.enqueue(op{kind: opDelete, table: table, id: id})
}

func (e *Engine) enqueue(o op) {
	e.pending.Add(1)
	select {
	case e.outbox <- o:
	default:
		e.pending.Done()
		e.logger.Warn("outbox full, dropping push", "table", o.table, "id", o.id)
	}
}

// pushWorker drains the outbox one op at a time. Each op gets exactly one
// attempt; a failure is logged and the op is gone.
func (e *Engine) pushWorker() {
	defer close(e.done)
	for o := range e.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		var err error
		switch o.kind {
		case opUpsert:
			err = e.remote.Upsert(ctx, o.table, o.id, o.row)
		case opDelete:
			err = e.remote.Delete(ctx, o.table, o.id)
		}
		cancel()
		if err != nil {
			e.logger.Warn("push failed", "table", o.table, "id", o.id, "error", err)
		}
		e.pending.Done()
	}
}

// Flush blocks until every push queued before the call has been attempted.
func (e *Engine) Flush() {
	e.pending.Wait()
}

func (e *Engine) consume(householdID string, sub *remote.Subscription) {
	for event := range sub.Events() {
		e.apply(householdID, event)
	}

	// Feed ended. If it was still the active one, note the drop; the user
	// keeps working locally and the next activation resubscribes.
	e.mu.Lock()
	if e.sub == sub {
		e.sub = nil
		e.state = StateUnsubscribed
		e.mu.Unlock()
		e.logger.Warn("realtime subscription ended", "household_id", householdID)
		return
	}
	e.mu.Unlock()
}

// apply mirrors one remote change into the local store. Events for a
// household that is no longer active are discarded.
func (e *Engine) apply(householdID string, event remote.ChangeEvent) {
	e.mu.Lock()
	current := e.active
	e.mu.Unlock()
	if current != householdID {
		return
	}

	var err error
	if event.Type == remote.ChangeDelete {
		err = e.deleteLocal(event.Table, event.ID, event.Old)
	} else {
		err = e.putLocal(event.Table, event.New)
	}
	if err != nil {
		e.logger.Error("apply remote change",
			"type", event.Type, "table", event.Table, "id", event.ID, "error", err)
	}
}

func (e *Engine) putLocal(table string, raw json.RawMessage) error {
	switch table {
	case rowmap.TableRecipes:
		rec, err := rowmap.RecipeFromRow(raw)
		if err != nil {
			return err
		}
		return e.local.PutRecipe(rec)
	case rowmap.TableInventory:
		item, err := rowmap.InventoryFromRow(raw)
		if err != nil {
			return err
		}
		return e.local.PutInventoryItem(item)
	case rowmap.TableShoppingList:
		item, err := rowmap.ShoppingFromRow(raw)
		if err != nil {
			return err
		}
		return e.local.PutShoppingItem(item)
	case rowmap.TableChatLogs:
		log, err := rowmap.ChatLogFromRow(raw)
		if err != nil {
			return err
		}
		return e.local.PutChatLog(log)
	}
	return fmt.Errorf("unknown table %q", table)
}

func (e *Engine) deleteLocal(table, id string, old json.RawMessage) error {
	if id == "" && len(old) > 0 {
		var err error
		if id, err = rowmap.RowID(old); err != nil {
			return err
		}
	}
	switch table {
	case rowmap.TableRecipes:
		return e.local.DeleteRecipe(id)
	case rowmap.TableInventory:
		return e.local.DeleteInventoryItem(id)
	case rowmap.TableShoppingList:
		return e.local.DeleteShoppingItem(id)
	case rowmap.TableChatLogs:
		return e.local.DeleteChatLog(id)
	}
	return fmt.Errorf("unknown table %q", table)
}

func (e *Engine) storeRows(table string, rows []json.RawMessage) error {
	switch table {
	case rowmap.TableRecipes:
		recipes := make([]model.Recipe, 0, len(rows))
		for _, raw := range rows {
			rec, err := rowmap.RecipeFromRow(raw)
			if err != nil {
				return err
			}
			recipes = append(recipes, rec)
		}
		return e.local.BulkPutRecipes(recipes)
	case rowmap.TableInventory:
		items := make([]model.InventoryItem, 0, len(rows))
		for _, raw := range rows {
			item, err := rowmap.InventoryFromRow(raw)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return e.local.BulkPutInventoryItems(items)
	case rowmap.TableShoppingList:
		items := make([]model.ShoppingListItem, 0, len(rows))
		for _, raw := range rows {
			item, err := rowmap.ShoppingFromRow(raw)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return e.local.BulkPutShoppingItems(items)
	case rowmap.TableChatLogs:
		logs := make([]model.ChatLog, 0, len(rows))
		for _, raw := range rows {
			log, err := rowmap.ChatLogFromRow(raw)
			if err != nil {
				return err
			}
			logs = append(logs, log)
		}
		return e.local.BulkPutChatLogs(logs)
	}
	return fmt.Errorf("unknown table %q", table)
}
