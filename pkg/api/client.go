package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/logger/zerolog"
)

// DefaultBaseURL is the public dashboard API.
const DefaultBaseURL = "https://coronavirus.data.gov.uk/api"

// Common errors
var (
	ErrNoContent     = errors.New("no content")
	ErrInvalidFormat = errors.New("invalid export format")
)

// StatusError is returned for responses that are not retried, eg. 4xx.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d for %s: %s", e.Code, e.URL, e.Body)
}

// Option is a function that configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCache stores successful responses in cache for ttl
func WithCache(cache core.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRetry sets how many times a failed request is retried and the delay bounds
func WithRetry(maxRetries int, minDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.minDelay = minDelay
		c.maxDelay = maxDelay
	}
}

// Client talks to the dashboard API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger

	cache    core.Cache
	cacheTTL time.Duration

	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
}

var (
	_ core.MetricSource = (*Client)(nil)
	_ core.DataSource   = (*Client)(nil)
)

// New creates a client for the API served at baseURL
func New(baseURL string, log logger.Logger, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zerolog.Nop()
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		maxRetries: 3,
		minDelay:   200 * time.Millisecond,
		maxDelay:   2 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// BaseURL returns the API root used by the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) retryBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    c.minDelay,
		Max:    c.maxDelay,
		Factor: 2,
		Jitter: true,
	}
}

// get fetches target, serving it from the cache when possible. Transport
// errors and 5xx responses are retried with backoff.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	log := c.log.WithField("url", target)

	if c.cache != nil {
		content, ok, err := c.cache.Get(target)
		if err != nil {
			log.WithError(err).Warn("cache read failed")
		} else if ok {
			log.Debug("cache hit")
			return content, nil
		}
	}

	retry := c.retryBackoff()
	for {
		content, err := c.do(ctx, target)
		if err == nil {
			if c.cache != nil {
				if err := c.cache.Set(target, content, c.cacheTTL); err != nil {
					log.WithError(err).Warn("cache write failed")
				}
			}
			return content, nil
		}

		if !retryable(err) || int(retry.Attempt()) >= c.maxRetries {
			return nil, err
		}

		delay := retry.Duration()
		log.WithError(err).Debugf("retrying in %s", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, fmt.Errorf("%s: %w", target, ErrNoContent)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &StatusError{Code: resp.StatusCode, URL: target, Body: string(body)}
	case len(body) == 0:
		return nil, fmt.Errorf("%s: %w", target, ErrNoContent)
	}

	return body, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "transport error: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var transport *transportError
	if errors.As(err, &transport) {
		return true
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError
	}

	return false
}
