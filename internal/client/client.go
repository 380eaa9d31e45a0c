// Package client talks to a running decoder server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"radiocode/internal/shared"
)

// APIError is a non-2xx response carrying the server's error envelope.
type APIError struct {
	Status int
	Body   shared.ErrorBody
}

func (e *APIError) Error() string {
	if e.Body.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Body.Message, e.Status)
}

type Client struct {
	ServerURL string
	APIKey    string
	HTTP      *http.Client
}

func New(serverURL, apiKey string) *Client {
	return &Client{
		ServerURL: strings.TrimRight(serverURL, "/"),
		APIKey:    apiKey,
		HTTP:      &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.ServerURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var env shared.ErrorEnvelope
		if json.Unmarshal(b, &env) == nil {
			apiErr.Body = env.Error
		}
		return apiErr
	}
	return json.Unmarshal(b, out)
}

func (c *Client) Decode(ctx context.Context, dr shared.DecodeRequest) (*shared.DecodeResponse, error) {
	body, err := json.Marshal(dr)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/decode", body)
	if err != nil {
		return nil, err
	}
	var out shared.DecodeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Manufacturers(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/manufacturers", nil)
	if err != nil {
		return nil, err
	}
	var out shared.ManufacturersResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Manufacturers, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	var out shared.HealthResponse
	if err := c.do(req, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}

func (c *Client) History(ctx context.Context, limit int) ([]shared.HistoryEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/history?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}
	var out shared.HistoryResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
