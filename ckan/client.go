package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultActionPath is the path under the URL base where CKAN serves actions.
	DefaultActionPath = "api/3/action"

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "ckanta"
)

// Config holds the connection settings for a single CKAN instance.
type Config struct {
	URLBase    string
	APIKey     string
	ActionPath string
}

// Client performs action calls against a CKAN instance.
type Client struct {
	urlBase    string
	actionPath string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	hasTimeout bool
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is not modified: a
// timeout set with WithTimeout applies to a copy of it.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

// WithRateLimit limits outgoing calls to rps requests per second.
// A value of zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	urlBase := strings.TrimSuffix(strings.TrimSpace(cfg.URLBase), "/")
	if urlBase == "" {
		return nil, ErrURLBaseRequired
	}

	actionPath := strings.Trim(strings.TrimSpace(cfg.ActionPath), "/")
	if actionPath == "" {
		actionPath = DefaultActionPath
	}

	c := &Client{
		urlBase:    urlBase,
		actionPath: actionPath,
		apiKey:     cfg.APIKey,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.httpClient == nil:
		c.httpClient = &http.Client{Timeout: c.timeout}
	case c.hasTimeout:
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c, nil
}

// URLBase returns the normalized URL base of the instance.
func (c *Client) URLBase() string {
	return c.urlBase
}

// Timeout returns the HTTP client timeout. Zero means none.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// ActionURL returns the endpoint URL for the named action.
func (c *Client) ActionURL(action string) string {
	return c.urlBase + "/" + c.actionPath + "/" + action
}

// Get calls an action with a GET request.
func (c *Client) Get(ctx context.Context, action string, payload map[string]any) (*Response, error) {
	return c.Call(ctx, action, payload, MethodGet)
}

// Post calls an action with a POST request. The payload is required.
func (c *Client) Post(ctx context.Context, action string, payload map[string]any) (*Response, error) {
	return c.Call(ctx, action, payload, MethodPost)
}

// Status calls status_show, which any reachable CKAN instance answers
// without authentication.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	resp, err := c.Get(ctx, "status_show", nil)
	if err != nil {
		return nil, err
	}
	var status map[string]any
	if err := resp.Decode(&status); err != nil {
		return nil, err
	}
	return status, nil
}

// Call performs an action request and decodes the response envelope.
// A non-2xx status or an envelope with success=false returns *APIError.
func (c *Client) Call(ctx context.Context, action string, payload map[string]any, method Method) (*Response, error) {
	if action == "" {
		return nil, ErrEmptyAction
	}

	req, err := c.newRequest(ctx, action, payload, method)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.DebugContext(ctx, "ckan action",
		"action", action,
		"method", string(method),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseActionError(action, resp.StatusCode, body)
	}

	var env Response
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if !env.Success {
		return nil, parseActionError(action, resp.StatusCode, body)
	}

	return &env, nil
}

func (c *Client) newRequest(ctx context.Context, action string, payload map[string]any, method Method) (*http.Request, error) {
	target := c.ActionURL(action)

	var req *http.Request
	var err error
	switch method {
	case MethodPost:
		if payload == nil {
			return nil, fmt.Errorf("%s: %w", action, ErrPayloadRequired)
		}
		data, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, fmt.Errorf("marshal payload: %w", marshalErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	case MethodGet, "":
		query, queryErr := encodeQuery(payload)
		if queryErr != nil {
			return nil, queryErr
		}
		if query != "" {
			target += "?" + query
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// encodeQuery turns an action payload into query parameters. Scalars are
// written as text and anything structured is JSON-encoded, which is how
// CKAN parses GET parameters for list and dict arguments.
func encodeQuery(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := url.Values{}
	for _, k := range keys {
		switch v := payload[k].(type) {
		case nil:
			continue
		case string:
			query.Set(k, v)
		case bool:
			query.Set(k, strconv.FormatBool(v))
		case int:
			query.Set(k, strconv.Itoa(v))
		case int64:
			query.Set(k, strconv.FormatInt(v, 10))
		case float64:
			query.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("encode query %s: %w", k, err)
			}
			query.Set(k, string(data))
		}
	}
	return query.Encode(), nil
}
