// Package client talks to the focus-tracker HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/stats"
)

// ErrNotLoggedIn is returned by calls that need a token when none is set.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Client is a thin typed wrapper over the JSON API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*api.Session, error) {
	var out api.Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", false, api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*api.Session, error) {
	var out api.Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false, api.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Verify(ctx context.Context) (*api.User, error) {
	var out api.Verification
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]api.Task, error) {
	var out []api.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, req api.TaskRequest) (*api.Task, error) {
	var out api.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req api.TaskRequest) (*api.Task, error) {
	var out api.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) (*api.DeletedTask, error) {
	var out api.DeletedTask
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTrackers(ctx context.Context) ([]api.Tracker, error) {
	var out []api.Tracker
	if err := c.do(ctx, http.MethodGet, "/api/trackers", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTracker(ctx context.Context, req api.TrackerRequest) (*api.Tracker, error) {
	var out api.Tracker
	if err := c.do(ctx, http.MethodPost, "/api/trackers", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTracker(ctx context.Context, id string) (*api.DeletedTracker, error) {
	var out api.DeletedTracker
	if err := c.do(ctx, http.MethodDelete, "/api/trackers/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary fetches totals and streaks; tz may be empty for the server default.
func (c *Client) Summary(ctx context.Context, tz string) (*stats.Summary, error) {
	var out stats.Summary
	if err := c.do(ctx, http.MethodGet, "/api/stats"+query("tz", tz), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Heatmap(ctx context.Context, from, to, tz string) (*api.HeatmapResponse, error) {
	var out api.HeatmapResponse
	path := "/api/stats/heatmap" + query("from", from, "to", to, "tz", tz)
	if err := c.do(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/export", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Archive(ctx context.Context) (*api.Archive, error) {
	var out api.Archive
	if err := c.do(ctx, http.MethodPost, "/api/export", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out any) error {
	if authed && c.Token == "" {
		return ErrNotLoggedIn
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var env api.Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: unexpected response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// query builds a query string from key/value pairs, skipping empty values.
func query(pairs ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			v.Set(pairs[i], pairs[i+1])
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
