// Package supabase stores attendance data in a hosted PostgREST endpoint
// (the Supabase REST API) instead of a direct SQL connection.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const restPath = "/rest/v1/"

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("supabase: status %d", e.Status)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client for baseURL (e.g. https://<ref>.supabase.co).
// A nil httpClient gets a 10s timeout default.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Ping checks that the REST endpoint answers. Any non-5xx status counts as up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "", nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, table, query, nil, out)
}

func (c *Client) insert(ctx context.Context, table string, rows any, out any) error {
	return c.do(ctx, http.MethodPost, table, nil, rows, out)
}

func (c *Client) update(ctx context.Context, table string, filter url.Values, patch any, out any) error {
	return c.do(ctx, http.MethodPatch, table, filter, patch, out)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", table, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, table, query, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", table, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + restPath + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func eq(v string) string {
	return "eq." + v
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
