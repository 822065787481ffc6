// Package client is a typed Go client for the vinoteca HTTP API. Reads
// are cached in-process for a short TTL and any successful mutation
// invalidates the cached reads of the entity it touched, so a read after
// a write through the same client never serves stale data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultCacheTTL = 30 * time.Second

// Client talks to a vinoteca API server.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	cache   *queryCache
	ttl     time.Duration
	noCache bool
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCacheTTL sets how long GET responses are reused. A zero or
// negative TTL stores nothing.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithoutCache disables read caching entirely.
func WithoutCache() Option {
	return func(c *Client) { c.noCache = true }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   newQueryCache(),
		ttl:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request and returns the raw response body. Non-2xx
// responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// getJSON serves a GET from cache when possible, fetching and storing
// the body otherwise.
func (c *Client) getJSON(ctx context.Context, entity, path string, out any) error {
	key := entity + ":" + path
	if !c.noCache {
		if body, ok := c.cache.get(key); ok {
			return json.Unmarshal(body, out)
		}
	}

	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if !c.noCache {
		c.cache.set(key, body, c.ttl)
	}
	return json.Unmarshal(body, out)
}

// mutate performs a write and, on success, drops the entity's cached
// reads. out may be nil for responses without a body.
func (c *Client) mutate(ctx context.Context, method, path, entity string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	c.cache.invalidatePrefix(entity + ":")
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// uploadFile performs a single-file multipart POST and invalidates the
// entity's cached reads on success.
func (c *Client) uploadFile(ctx context.Context, path, entity, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart form: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, path, w.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	c.cache.invalidatePrefix(entity + ":")
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var envelope struct {
		Error  string       `json:"error"`
		Fields []FieldError `json:"fields"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.Fields = envelope.Fields
	}
	return apiErr
}
