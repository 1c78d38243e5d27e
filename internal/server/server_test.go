package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/session"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

// The device runs offline in these tests: no backend client, the engine
// pointed at an in-process store it never needs.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := syncer.New(store, remote.NewMemory(), logger)
	t.Cleanup(engine.Close)

	sess, err := session.NewManager(store, engine, logger)
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("start session: %v", err)
	}

	srv := New(store, engine, sess, nil, Config{Port: "0"}, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func createRecipe(t *testing.T, ts *httptest.Server, title string, duration int, tags []string, ingredients []model.IngredientItem) model.Recipe {
	t.Helper()
	var rec model.Recipe
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/recipes", map[string]any{
		"title":       title,
		"duration":    duration,
		"tags":        tags,
		"ingredients": ingredients,
	}, &rec)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create recipe: status %d", resp.StatusCode)
	}
	return rec
}

func createInventory(t *testing.T, ts *httptest.Server, name string, quantity float64, unit string) model.InventoryItem {
	t.Helper()
	var item model.InventoryItem
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/inventory", map[string]any{
		"name": name, "quantity": quantity, "unit": unit,
	}, &item)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create inventory item: status %d", resp.StatusCode)
	}
	return item
}

func TestRecipeCRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := createRecipe(t, ts, "番茄炒蛋", 15, []string{"家常菜"}, nil)
	if rec.ID == "" || rec.HouseholdID != model.OfflineHouseholdID {
		t.Fatalf("created recipe = %+v", rec)
	}

	var got model.Recipe
	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/"+rec.ID, nil, &got); resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d", resp.StatusCode)
	}
	if got.Title != "番茄炒蛋" {
		t.Errorf("title = %q", got.Title)
	}

	var updated model.Recipe
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/recipes/"+rec.ID, map[string]any{
		"title": "西红柿炒鸡蛋", "duration": 20,
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	if updated.Title != "西红柿炒鸡蛋" {
		t.Errorf("updated title = %q", updated.Title)
	}

	if resp := doJSON(t, http.MethodDelete, ts.URL+"/api/recipes/"+rec.ID, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/"+rec.ID, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", resp.StatusCode)
	}
}

func TestRecipeValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/recipes", map[string]any{"title": "  "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank title: status %d, want 400", resp.StatusCode)
	}
}

func TestRecipeListFilters(t *testing.T) {
	ts := newTestServer(t)

	createRecipe(t, ts, "番茄炒蛋", 15, []string{"快手菜"}, nil)
	createRecipe(t, ts, "红烧肉", 90, []string{"硬菜"}, nil)

	var fast []model.Recipe
	doJSON(t, http.MethodGet, ts.URL+"/api/recipes?max_duration=30", nil, &fast)
	if len(fast) != 1 || fast[0].Title != "番茄炒蛋" {
		t.Errorf("max_duration filter returned %+v", fast)
	}

	var tagged []model.Recipe
	doJSON(t, http.MethodGet, ts.URL+"/api/recipes?tags=硬菜", nil, &tagged)
	if len(tagged) != 1 || tagged[0].Title != "红烧肉" {
		t.Errorf("tag filter returned %+v", tagged)
	}

	var keyword []model.Recipe
	doJSON(t, http.MethodGet, ts.URL+"/api/recipes?keyword=番茄", nil, &keyword)
	if len(keyword) != 1 {
		t.Errorf("keyword filter returned %+v", keyword)
	}
}

func TestRecipeDiffEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createInventory(t, ts, "鸡蛋", 10, "个")
	rec := createRecipe(t, ts, "番茄炒蛋", 15, nil, []model.IngredientItem{
		{Name: "鸡蛋", Amount: 3, Unit: "个"},
		{Name: "番茄", Amount: 2, Unit: "个"},
	})

	var diff struct {
		Available []struct {
			Name string  `json:"name"`
			Used float64 `json:"used"`
		} `json:"available"`
		Missing []struct {
			Name    string  `json:"name"`
			Need    float64 `json:"need"`
			Current float64 `json:"current"`
		} `json:"missing"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/"+rec.ID+"/diff", nil, &diff)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("diff: status %d", resp.StatusCode)
	}
	if len(diff.Available) != 1 || diff.Available[0].Name != "鸡蛋" {
		t.Errorf("available = %+v", diff.Available)
	}
	if len(diff.Missing) != 1 || diff.Missing[0].Name != "番茄" || diff.Missing[0].Need != 2 {
		t.Errorf("missing = %+v", diff.Missing)
	}
}

func TestAddMissingToShopping(t *testing.T) {
	ts := newTestServer(t)

	createInventory(t, ts, "鸡蛋", 1, "个")
	rec := createRecipe(t, ts, "番茄炒蛋", 15, nil, []model.IngredientItem{
		{Name: "鸡蛋", Amount: 3, Unit: "个"},
		{Name: "番茄", Amount: 2, Unit: "个"},
	})

	var items []model.ShoppingListItem
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/recipes/"+rec.ID+"/shopping", nil, &items)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add missing: status %d", resp.StatusCode)
	}
	if len(items) != 2 {
		t.Fatalf("got %d shopping items, want 2", len(items))
	}
	byName := map[string]model.ShoppingListItem{}
	for _, item := range items {
		byName[item.Name] = item
		if item.SourceRecipeID != rec.ID {
			t.Errorf("item %q has source %q, want %q", item.Name, item.SourceRecipeID, rec.ID)
		}
	}
	// The shortfall, not the full recipe amount.
	if byName["鸡蛋"].Quantity != 2 {
		t.Errorf("鸡蛋 quantity = %v, want 2", byName["鸡蛋"].Quantity)
	}
	if byName["番茄"].Quantity != 2 {
		t.Errorf("番茄 quantity = %v, want 2", byName["番茄"].Quantity)
	}
}

func TestShoppingToggleAndClear(t *testing.T) {
	ts := newTestServer(t)

	var item model.ShoppingListItem
	doJSON(t, http.MethodPost, ts.URL+"/api/shopping", map[string]any{
		"name": "酱油", "quantity": 1, "unit": "瓶",
	}, &item)
	var keep model.ShoppingListItem
	doJSON(t, http.MethodPost, ts.URL+"/api/shopping", map[string]any{
		"name": "醋", "quantity": 1, "unit": "瓶",
	}, &keep)

	var toggled model.ShoppingListItem
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/shopping/"+item.ID+"/toggle", nil, &toggled)
	if resp.StatusCode != http.StatusOK || !toggled.IsBought {
		t.Fatalf("toggle: status %d, bought %v", resp.StatusCode, toggled.IsBought)
	}

	var cleared map[string]int
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/shopping/clear-bought", nil, &cleared)
	if resp.StatusCode != http.StatusOK || cleared["removed"] != 1 {
		t.Fatalf("clear-bought: status %d, removed %d", resp.StatusCode, cleared["removed"])
	}

	var remaining []model.ShoppingListItem
	doJSON(t, http.MethodGet, ts.URL+"/api/shopping", nil, &remaining)
	if len(remaining) != 1 || remaining[0].Name != "醋" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestChatEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var log model.ChatLog
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/chats", map[string]any{"title": "今晚吃什么"}, &log)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create chat: status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/chats/"+log.ID+"/messages", map[string]any{
		"role": "user", "content": "冰箱里有什么能做的?",
	}, &log)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add message: status %d", resp.StatusCode)
	}
	if len(log.Messages) != 1 || log.Messages[0].Role != model.RoleUser {
		t.Errorf("messages = %+v", log.Messages)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/chats/"+log.ID+"/messages", map[string]any{
		"role": "robot", "content": "hi",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad role: status %d, want 400", resp.StatusCode)
	}
}

func TestTodayEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createInventory(t, ts, "鸡蛋", 10, "个")
	createRecipe(t, ts, "煮鸡蛋", 10, nil, []model.IngredientItem{
		{Name: "鸡蛋", Amount: 2, Unit: "个"},
	})
	createRecipe(t, ts, "番茄炒蛋", 15, nil, []model.IngredientItem{
		{Name: "鸡蛋", Amount: 3, Unit: "个"},
		{Name: "番茄", Amount: 2, Unit: "个"},
	})

	var today struct {
		CanCook  []model.Recipe        `json:"canCook"`
		Close    []model.Recipe        `json:"close"`
		Expiring []model.InventoryItem `json:"expiring"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/today", nil, &today)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("today: status %d", resp.StatusCode)
	}
	if len(today.CanCook) != 1 || today.CanCook[0].Title != "煮鸡蛋" {
		t.Errorf("canCook = %+v", today.CanCook)
	}
	if len(today.Close) != 1 || today.Close[0].Title != "番茄炒蛋" {
		t.Errorf("close = %+v", today.Close)
	}
}

func TestHouseholdEndpointsWithoutBackend(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/households", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestSessionEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var out struct {
		ActiveHouseholdID string        `json:"activeHouseholdId"`
		Sync              syncer.Status `json:"sync"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/session", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session: status %d", resp.StatusCode)
	}
	if out.ActiveHouseholdID != model.OfflineHouseholdID {
		t.Errorf("active household = %q", out.ActiveHouseholdID)
	}
	if out.Sync.State != syncer.StateUnsubscribed {
		t.Errorf("sync state = %q, want unsubscribed", out.Sync.State)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	source := newTestServer(t)
	createRecipe(t, source, "番茄炒蛋", 15, nil, nil)
	createInventory(t, source, "鸡蛋", 10, "个")

	req, _ := http.NewRequest(http.MethodPost, source.URL+"/api/backup/export", nil)
	req.Header.Set("X-Backup-Passphrase", "家庭厨房")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	blob, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d, err %v", resp.StatusCode, err)
	}

	target := newTestServer(t)
	req, _ = http.NewRequest(http.MethodPost, target.URL+"/api/backup/import", bytes.NewReader(blob))
	req.Header.Set("X-Backup-Passphrase", "家庭厨房")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status %d", resp.StatusCode)
	}

	var recipes []model.Recipe
	doJSON(t, http.MethodGet, target.URL+"/api/recipes", nil, &recipes)
	if len(recipes) != 1 || recipes[0].Title != "番茄炒蛋" {
		t.Errorf("imported recipes = %+v", recipes)
	}

	// Wrong passphrase must not import anything.
	third := newTestServer(t)
	req, _ = http.NewRequest(http.MethodPost, third.URL+"/api/backup/import", bytes.NewReader(blob))
	req.Header.Set("X-Backup-Passphrase", "猜错了")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import with wrong passphrase: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong passphrase: status %d, want 400", resp.StatusCode)
	}
}
