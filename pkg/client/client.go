// Package client is a Go client for the CV builder API. It keeps a Store in
// sync with the responses it receives so callers can read the signed-in
// user, the profile list and the active theme without another round trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

var (
	ErrNotAuthenticated = errors.New("client: not authenticated")
	ErrNilClient        = errors.New("client: nil client")
)

// APIError is a non-2xx response decoded from the API envelope.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error: status=%d message=%q", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d message=%q errors=%s", e.StatusCode, e.Message, strings.Join(e.Errors, "; "))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *Store
	logger  *zap.Logger

	// refreshMu serialises token refreshes so concurrent 401s trigger one.
	refreshMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithStore shares a store between clients, or seeds one with saved tokens.
func WithStore(s *Store) Option {
	return func(c *Client) { c.store = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns nil when baseURL is blank.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Client) Store() *Store {
	if c == nil {
		return nil
	}
	return c.store
}

// do sends one request and decodes the envelope's data into out. Authorised
// calls that come back 401 refresh the token pair once and retry.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	if c == nil || c.http == nil {
		return ErrNilClient
	}

	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	token := ""
	if authed {
		token = c.store.AccessToken()
		if token == "" {
			return ErrNotAuthenticated
		}
	}

	err = c.send(ctx, method, path, payload, token, out)
	if !authed || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	fresh, rerr := c.refreshAfter(ctx, token)
	if rerr != nil {
		c.logger.Debug("token refresh failed", zap.String("path", path), zap.Error(rerr))
		return err
	}
	return c.send(ctx, method, path, payload, fresh, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var env envelope
		if json.Unmarshal(rb, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		c.logger.Debug("api request failed",
			zap.String("method", method), zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// refreshAfter rotates the token pair unless another goroutine already did so
// after stale was issued.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.store.AccessToken(); current != "" && current != stale {
		return current, nil
	}
	if _, err := c.Refresh(ctx); err != nil {
		return "", err
	}
	return c.store.AccessToken(), nil
}

// raw fetches a non-envelope body, such as a PDF.
func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, ErrNilClient
	}
	get := func(token string) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return c.http.Do(req)
	}

	token := c.store.AccessToken()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	resp, err := get(token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		fresh, rerr := c.refreshAfter(ctx, token)
		if rerr != nil {
			return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: http.StatusText(http.StatusUnauthorized)}
		}
		if resp, err = get(fresh); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env envelope
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env) == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		return nil, apiErr
	}
	return io.ReadAll(resp.Body)
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}
