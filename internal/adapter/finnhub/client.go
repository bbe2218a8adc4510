// Package finnhub adapts the Finnhub REST API to the domain's price and post sources.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	finnhubapi "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/retry"
)

const (
	sourceName  = "finnhub"
	tokenHeader = "X-Finnhub-Token"

	retryInitialBackoff   = 500 * time.Millisecond
	retryRateLimitBackoff = 5 * time.Second
	breakerTimeout        = 30 * time.Second
	breakerTrips          = 5
)

// Client holds the shared API handle, breaker and retry policy behind
// QuoteSource and NewsSource.
type Client struct {
	client  *finnhubapi.APIClient
	api     *finnhubapi.DefaultApiService
	clock   clockwork.Clock
	policy  retry.Policy
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.UpstreamMetrics
}

type Option func(*Client)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithServerURL points the client at a different API root, e.g. a test server.
func WithServerURL(serverURL string) Option {
	return func(c *Client) {
		c.client.GetConfig().Servers = finnhubapi.ServerConfigurations{{URL: serverURL}}
	}
}

func NewClient(apiKey string, timeout time.Duration, m *metrics.UpstreamMetrics, opts ...Option) *Client {
	cfg := finnhubapi.NewConfiguration()
	cfg.AddDefaultHeader(tokenHeader, apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	client := finnhubapi.NewAPIClient(cfg)
	c := &Client{
		client:  client,
		api:     client.DefaultApi,
		clock:   clockwork.NewRealClock(),
		metrics: m,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   retryInitialBackoff,
			RateLimitBackoff: retryRateLimitBackoff,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    sourceName,
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.ObserveBreaker(name, to)
		},
	})
	return c
}

// apiCall is one generated-client request; the response carries the status
// code when the call failed after reaching the server.
type apiCall[T any] func(ctx context.Context) (T, *http.Response, error)

func execute[T any](ctx context.Context, c *Client, op string, call apiCall[T]) (T, error) {
	var zero T

	p := c.policy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Finnhub request failed, retrying", "operation", op, "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
	}

	start := c.clock.Now()
	v, err := c.breaker.Execute(func() (interface{}, error) {
		return retry.Do(ctx, p, classifyError, func(ctx context.Context) (T, error) {
			out, resp, err := call(ctx)
			if err != nil {
				return zero, withStatus(resp, err)
			}
			return out, nil
		})
	})
	c.metrics.RequestDuration.WithLabelValues(sourceName).Observe(c.clock.Since(start).Seconds())

	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		c.metrics.Requests.WithLabelValues(sourceName, result).Inc()
		return zero, fmt.Errorf("%w: finnhub %s: %w", domain.ErrUpstreamUnavailable, op, err)
	}

	c.metrics.Requests.WithLabelValues(sourceName, "ok").Inc()
	return v.(T), nil
}

// StatusError records the HTTP status of a failed API call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("finnhub returned %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func withStatus(resp *http.Response, err error) error {
	if resp == nil {
		return err
	}
	return &StatusError{StatusCode: resp.StatusCode, Err: err}
}

// isClientError reports a 4xx other than 429, e.g. an endpoint outside the
// API plan. These do not count toward tripping the breaker.
func isClientError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	code := statusErr.StatusCode
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

func classifyError(err error) retry.Action {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return retry.Retry
	}

	switch {
	case statusErr.StatusCode == http.StatusTooManyRequests:
		return retry.After
	case statusErr.StatusCode >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
