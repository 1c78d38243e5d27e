package remote

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store. It backs tests and offline demos with the
// same semantics the backend provides: household-scoped rows and a change
// feed per household.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]json.RawMessage
	subs   map[string]map[*Subscription]struct{}

	// Optional hooks, called before the operation when set. Tests use
	// them to inject failures and to coordinate timing.
	OnSelect func(ctx context.Context, table, householdID string) error
	OnUpsert func(ctx context.Context, table, id string) error
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]map[string]json.RawMessage),
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

func (m *Memory) Select(ctx context.Context, table, householdID string) ([]json.RawMessage, error) {
	if m.OnSelect != nil {
		if err := m.OnSelect(ctx, table, householdID); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []json.RawMessage
	for _, raw := range m.tables[table] {
		if rowHousehold(raw) == householdID {
			rows = append(rows, raw)
		}
	}
	return rows, nil
}

func (m *Memory) Upsert(ctx context.Context, table, id string, row json.RawMessage) error {
	if m.OnUpsert != nil {
		if err := m.OnUpsert(ctx, table, id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		rows = make(map[string]json.RawMessage)
		m.tables[table] = rows
	}

	typ := ChangeInsert
	if _, exists := rows[id]; exists {
		typ = ChangeUpdate
	}
	stored := make(json.RawMessage, len(row))
	copy(stored, row)
	rows[id] = stored

	m.publishLocked(rowHousehold(stored), ChangeEvent{
		Type:  typ,
		Table: table,
		ID:    id,
		New:   stored,
	})
	return nil
}

func (m *Memory) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tables[table][id]
	if !ok {
		return nil
	}
	delete(m.tables[table], id)

	m.publishLocked(rowHousehold(old), ChangeEvent{
		Type:  ChangeDelete,
		Table: table,
		ID:    id,
		Old:   old,
	})
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, householdID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sub *Subscription
	sub = newSubscription(subscriptionBuffer, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[householdID][sub]; ok {
			delete(m.subs[householdID], sub)
			close(sub.events)
		}
	})

	if m.subs[householdID] == nil {
		m.subs[householdID] = make(map[*Subscription]struct{})
	}
	m.subs[householdID][sub] = struct{}{}
	return sub, nil
}

// Row returns the stored row, if any. A test helper.
func (m *Memory) Row(table, id string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.tables[table][id]
	return raw, ok
}

// Count returns the number of rows in table. A test helper.
func (m *Memory) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func (m *Memory) publishLocked(householdID string, event ChangeEvent) {
	for sub := range m.subs[householdID] {
		select {
		case sub.events <- event:
		default:
		}
	}
}

func rowHousehold(raw json.RawMessage) string {
	var row struct {
		HouseholdID string `json:"household_id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return ""
	}
	return row.HouseholdID
}
