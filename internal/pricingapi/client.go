package pricingapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/telemetry"
)

// API is the transport effects use to reach the pricing service.
type API interface {
	Get(ctx context.Context, path string, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// ErrStatus is matched by every *StatusError.
var ErrStatus = errors.New("pricing api: unexpected status")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// Is lets errors.Is(err, ErrStatus) match.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to the pricing HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	group     singleflight.Group
}

const (
	defaultAPIBase   = "http://127.0.0.1:8088"
	defaultUserAgent = "swatch/0.1"
	requestTimeout   = 5 * time.Second
	maxResponseBytes = 8 << 20
)

// NewClient builds a Client for the given base URL or host:port.
func NewClient(apiBase string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get fetches path and decodes the JSON body into dest. Concurrent calls for
// the same path share one request.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	v, err, _ := c.group.Do(path, func() (any, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	return decode(v.([]byte), dest)
}

// Post sends body as JSON and decodes the response into dest.
func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decode(data, dest)
}

// FetchMatrix retrieves the pricing matrix for a product category.
func (c *Client) FetchMatrix(ctx context.Context, category string) (map[string]any, error) {
	return FetchMatrix(ctx, c, category)
}

// FetchMatrix retrieves the pricing matrix for a product category through api.
func FetchMatrix(ctx context.Context, api API, category string) (map[string]any, error) {
	var matrix map[string]any
	if err := api.Get(ctx, "/pricing/"+url.PathEscape(category), &matrix); err != nil {
		return nil, err
	}
	return matrix, nil
}

// FetchQuote retrieves a saved quote by id through api.
func FetchQuote(ctx context.Context, api API, id string) (state.Quote, error) {
	var q state.Quote
	if err := api.Get(ctx, "/quotes/"+url.PathEscape(id), &q); err != nil {
		return state.Quote{}, err
	}
	return q, nil
}

// SaveQuote stores q through api and returns the server's copy.
func SaveQuote(ctx context.Context, api API, q state.Quote) (state.Quote, error) {
	var saved state.Quote
	if err := api.Post(ctx, "/quotes", q, &saved); err != nil {
		return state.Quote{}, err
	}
	if saved.ID == "" {
		return q, nil
	}
	return saved, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (data []byte, err error) {
	defer func() { telemetry.CountRequest(method, err) }()

	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Method: method, Path: rel.Path, Code: resp.StatusCode}
	}
	data, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func decode(data []byte, dest any) error {
	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
