package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kitchenhub/kitchenhub/internal/backend/database"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
)

const testAdminSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, Config{Port: "0", AdminSecret: testAdminSecret}, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// provisionToken creates a user and issues a bearer token, the way the
// operator would when setting up a device.
func provisionToken(t *testing.T, ts *httptest.Server, userID string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"userId": userID, "name": userID})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/tokens", bytes.NewReader(body))
	req.Header.Set("X-Admin-Secret", testAdminSecret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("provision token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("provision token: status %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return out["token"]
}

func newClient(t *testing.T, ts *httptest.Server, userID string) *remote.Client {
	t.Helper()
	token := provisionToken(t, ts, userID)
	return remote.NewClient(ts.URL, token, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTokenProvisioningNeedsAdminSecret(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"userId": "alice"})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/tokens", bytes.NewReader(body))
	req.Header.Set("X-Admin-Secret", "wrong")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/households")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHouseholdLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	bob := newClient(t, ts, "bob")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	// Bob joins by invite code; joining twice is harmless.
	joined, err := bob.JoinByInviteCode(ctx, h.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != h.ID {
		t.Errorf("joined %q, want %q", joined.ID, h.ID)
	}
	if _, err := bob.JoinByInviteCode(ctx, h.InviteCode); err != nil {
		t.Errorf("second join: %v", err)
	}

	members, err := bob.ListMembers(ctx, h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}

	// Only the owner can rename or delete.
	if err := bob.RenameHousehold(ctx, h.ID, "bob的家"); !errors.Is(err, remote.ErrPermission) {
		t.Errorf("rename by member: %v, want ErrPermission", err)
	}
	if err := alice.RenameHousehold(ctx, h.ID, "新名字"); err != nil {
		t.Errorf("rename by owner: %v", err)
	}

	// The owner cannot leave; members can.
	if err := alice.LeaveHousehold(ctx, h.ID); !errors.Is(err, remote.ErrConflict) {
		t.Errorf("owner leave: %v, want ErrConflict", err)
	}
	if err := bob.LeaveHousehold(ctx, h.ID); err != nil {
		t.Errorf("member leave: %v", err)
	}

	if err := alice.DeleteHousehold(ctx, h.ID); err != nil {
		t.Fatalf("delete household: %v", err)
	}
	households, err := alice.ListHouseholds(ctx)
	if err != nil {
		t.Fatalf("list households: %v", err)
	}
	if len(households) != 0 {
		t.Errorf("got %d households after delete, want 0", len(households))
	}
}

func TestJoinUnknownInviteCode(t *testing.T) {
	ts := newTestServer(t)
	bob := newClient(t, ts, "bob")

	_, err := bob.JoinByInviteCode(context.Background(), "NOPE1234")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("join unknown code: %v, want ErrNotFound", err)
	}
}

func objectRow(id, householdID, title string) json.RawMessage {
	row := map[string]any{"id": id, "household_id": householdID, "title": title}
	data, _ := json.Marshal(row)
	return data
}

func TestObjectsRequireMembership(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	carol := newClient(t, ts, "carol")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	if err := alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", h.ID, "番茄炒蛋")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := alice.Select(ctx, rowmap.TableRecipes, h.ID)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}

	// Carol is not a member: reads, writes, and deletes are all forbidden.
	if _, err := carol.Select(ctx, rowmap.TableRecipes, h.ID); !errors.Is(err, remote.ErrPermission) {
		t.Errorf("outsider select: %v, want ErrPermission", err)
	}
	if err := carol.Upsert(ctx, rowmap.TableRecipes, "r2", objectRow("r2", h.ID, "入侵")); !errors.Is(err, remote.ErrPermission) {
		t.Errorf("outsider upsert: %v, want ErrPermission", err)
	}
	if err := carol.Delete(ctx, rowmap.TableRecipes, "r1"); !errors.Is(err, remote.ErrPermission) {
		t.Errorf("outsider delete: %v, want ErrPermission", err)
	}
}

func TestObjectCannotMoveBetweenHouseholds(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	ctx := context.Background()

	first, err := alice.CreateHousehold(ctx, "家一")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := alice.CreateHousehold(ctx, "家二")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", first.ID, "番茄炒蛋")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err = alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", second.ID, "番茄炒蛋"))
	if !errors.Is(err, remote.ErrConflict) {
		t.Errorf("cross-household upsert: %v, want ErrConflict", err)
	}
}

func TestDeleteMissingObjectSucceeds(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")

	if err := alice.Delete(context.Background(), rowmap.TableRecipes, "never-existed"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestUnknownTableRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := alice.Select(ctx, "secrets", h.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("select unknown table: %v, want ErrNotFound", err)
	}
}

func TestDeletingHouseholdWipesObjects(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	keep, err := alice.CreateHousehold(ctx, "另一个家")
	if err != nil {
		t.Fatalf("create second household: %v", err)
	}

	alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", h.ID, "番茄炒蛋"))
	alice.Upsert(ctx, rowmap.TableInventory, "v1", objectRow("v1", h.ID, "鸡蛋"))
	alice.Upsert(ctx, rowmap.TableRecipes, "r2", objectRow("r2", keep.ID, "红烧肉"))

	if err := alice.DeleteHousehold(ctx, h.ID); err != nil {
		t.Fatalf("delete household: %v", err)
	}

	rows, err := alice.Select(ctx, rowmap.TableRecipes, keep.ID)
	if err != nil {
		t.Fatalf("select surviving household: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("surviving household has %d recipes, want 1", len(rows))
	}
}

func TestChangeFeedDeliversMutations(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	sub, err := alice.Subscribe(ctx, h.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if err := alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", h.ID, "番茄炒蛋")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	event := waitForEvent(t, sub)
	if event.Type != remote.ChangeInsert || event.Table != rowmap.TableRecipes || event.ID != "r1" {
		t.Errorf("insert event = %+v", event)
	}

	if err := alice.Upsert(ctx, rowmap.TableRecipes, "r1", objectRow("r1", h.ID, "西红柿炒鸡蛋")); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if event := waitForEvent(t, sub); event.Type != remote.ChangeUpdate {
		t.Errorf("update event = %+v", event)
	}

	if err := alice.Delete(ctx, rowmap.TableRecipes, "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	event = waitForEvent(t, sub)
	if event.Type != remote.ChangeDelete || event.ID != "r1" {
		t.Errorf("delete event = %+v", event)
	}
}

func TestChangeFeedScopedToHousehold(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	ctx := context.Background()

	mine, err := alice.CreateHousehold(ctx, "家一")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	other, err := alice.CreateHousehold(ctx, "家二")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	sub, err := alice.Subscribe(ctx, mine.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	// A write to the other household must not show up on this feed.
	alice.Upsert(ctx, rowmap.TableRecipes, "other-r", objectRow("other-r", other.ID, "红烧肉"))
	alice.Upsert(ctx, rowmap.TableRecipes, "mine-r", objectRow("mine-r", mine.ID, "番茄炒蛋"))

	event := waitForEvent(t, sub)
	if event.ID != "mine-r" {
		t.Errorf("first event = %+v, want the row from this household", event)
	}
}

func TestChangeFeedRequiresMembership(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t, ts, "alice")
	carol := newClient(t, ts, "carol")
	ctx := context.Background()

	h, err := alice.CreateHousehold(ctx, "我们家")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := carol.Subscribe(ctx, h.ID); err == nil {
		t.Error("outsider subscribed to another household's feed")
	}
}

func waitForEvent(t *testing.T, sub *remote.Subscription) remote.ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("feed closed before the event arrived")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
	return remote.ChangeEvent{}
}
