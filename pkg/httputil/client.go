package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	errs "github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/observability"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 32 << 20
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a body exceeds the client's size limit.
	ErrTooLarge = errors.New("response body too large")
)

// Response is a fully read HTTP response body with its content type.
type Response struct {
	Body        []byte
	ContentType string
}

// Client performs GET requests with shared headers, limits and retry policy.
type Client struct {
	http     *http.Client
	headers  map[string]string
	maxBytes int64
	retries  int
	delay    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithRetries enables up to n additional attempts for retryable failures,
// starting with the given delay.
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = max(n, 0)
		c.delay = delay
	}
}

// WithMaxBytes caps the response body size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// WithHTTPClient replaces the underlying *http.Client (tests use the
// httptest server's client).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client. A non-positive timeout uses 30 seconds.
// Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		http:     &http.Client{Timeout: timeout},
		headers:  headers,
		maxBytes: defaultMaxBytes,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns its body.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var out *Response
	err := Retry(ctx, c.retries+1, c.delay, func() error {
		resp, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	return out, err
}

func (c *Client) doRequest(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, c.maxBytes)
	}
	return &Response{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errs.RateLimitedError{RetryAfter: retryAfter}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
