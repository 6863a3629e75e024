// Package rpc is the HTTP transport used by every coin adapter: JSON-RPC 2.0 calls to chain
// nodes and plain REST calls to explorers and the metadata backend.
//
// There is no retry and no backoff here. A failed call is returned to the caller as is.
package rpc

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
	"sync/atomic"
	"time"
)

// DefaultTimeout is used when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrNoResult is returned when a JSON-RPC response carries neither a result nor an error.
var ErrNoResult = errors.New("no result in response")

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Error is the error object of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client performs HTTP calls on behalf of the adapters.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
	nextID     atomic.Uint64
}

// NewClient creates a new client. A nil httpClient gets a client with DefaultTimeout and a
// nil logger uses slog.Default().
func NewClient(httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{httpClient: httpClient, log: log}
}

// NewRequest builds a JSON-RPC 2.0 request. Params is never encoded as null.
func (c *Client) NewRequest(method string, params ...any) Request {
	if params == nil {
		params = []any{}
	}
	return Request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
}

// CallRaw sends one JSON-RPC request to endpoint and returns the raw result.
func (c *Client) CallRaw(ctx context.Context, endpoint, method string, params ...any) (json.RawMessage, error) {
	req := c.NewRequest(method, params...)
	c.log.DebugContext(ctx, "rpc request", "endpoint", endpoint, "method", method, "id", req.ID)

	var resp Response
	if err := c.PostJSON(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, ErrNoResult
	}
	return resp.Result, nil
}

// Call sends one JSON-RPC request and decodes the result into out.
func (c *Client) Call(ctx context.Context, endpoint, method string, out any, params ...any) error {
	result, err := c.CallRaw(ctx, endpoint, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	c.log.DebugContext(ctx, "http request", "method", http.MethodGet, "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

// GetJSON sends a GET request and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// PostJSON sends payload as a JSON body and decodes the response into out. A nil out skips
// decoding.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// PostForm sends an url-encoded form and returns the response body.
func (c *Client) PostForm(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	c.log.DebugContext(ctx, "http request", "method", http.MethodPost, "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
