package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const subscriptionBuffer = 256

// Client is the HTTP implementation of Store, plus the household management
// calls that only make sense against the real backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With("component", "remote"),
	}
}

func (c *Client) Select(ctx context.Context, table, householdID string) ([]json.RawMessage, error) {
	query := url.Values{"household_id": {householdID}}
	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/objects/"+table, query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Upsert(ctx context.Context, table, id string, row json.RawMessage) error {
	return c.do(ctx, http.MethodPut, "/api/objects/"+table+"/"+id, nil, row, nil)
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/objects/"+table+"/"+id, nil, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Subscribe opens the backend's websocket change feed. The feed outlives
// ctx; it runs until Close is called or the connection drops.
func (c *Client) Subscribe(ctx context.Context, householdID string) (*Subscription, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) +
		"/api/sync/ws?household_id=" + url.QueryEscape(householdID)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": {"Bearer " + c.token}},
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", householdID, ErrUnavailable)
	}

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := newSubscription(subscriptionBuffer, func() {
		cancel()
		conn.Close(websocket.StatusNormalClosure, "")
	})

	go func() {
		defer close(sub.events)
		for {
			var event ChangeEvent
			if err := wsjson.Read(readCtx, conn, &event); err != nil {
				if readCtx.Err() == nil {
					c.logger.Warn("change feed closed", "household_id", householdID, "error", err)
				}
				return
			}
			select {
			case sub.events <- event:
			default:
				c.logger.Warn("change feed backlog full, dropping event",
					"table", event.Table, "id", event.ID)
			}
		}
	}()
	return sub, nil
}

func (c *Client) ListHouseholds(ctx context.Context) ([]model.Household, error) {
	var out []model.Household
	if err := c.do(ctx, http.MethodGet, "/api/households", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHousehold(ctx context.Context, name string) (*model.Household, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	var out model.Household
	if err := c.do(ctx, http.MethodPost, "/api/households", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinByInviteCode adds the caller to the household behind the code.
// Joining a household the caller already belongs to succeeds and returns it.
func (c *Client) JoinByInviteCode(ctx context.Context, code string) (*model.Household, error) {
	body := struct {
		InviteCode string `json:"inviteCode"`
	}{InviteCode: code}
	var out model.Household
	if err := c.do(ctx, http.MethodPost, "/api/households/join", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameHousehold(ctx context.Context, id, name string) error {
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	return c.do(ctx, http.MethodPatch, "/api/households/"+id, nil, body, nil)
}

func (c *Client) DeleteHousehold(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/households/"+id, nil, nil, nil)
}

func (c *Client) LeaveHousehold(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/households/"+id+"/leave", nil, nil, nil)
}

func (c *Client) ListMembers(ctx context.Context, id string) ([]model.HouseholdMember, error) {
	var out []model.HouseholdMember
	if err := c.do(ctx, http.MethodGet, "/api/households/"+id+"/members", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnavailable)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func statusError(code int) error {
	switch {
	case code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrPermission
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
