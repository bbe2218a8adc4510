// Package twitter fetches recent posts from the Twitter/X v2 recent search API.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/retry"
)

const (
	sourceName     = "twitter"
	searchPath     = "/2/tweets/search/recent"
	minPageSize    = 10
	maxPageSize    = 100
	maxErrorBody   = 512
	statusURL      = "https://twitter.com/i/web/status/"
	breakerTimeout = 30 * time.Second
	breakerTrips   = 5

	retryInitialBackoff   = 500 * time.Millisecond
	retryRateLimitBackoff = 15 * time.Second
	retryMaxBackoff       = 30 * time.Second
)

// Client implements domain.PostSource against the v2 recent search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	clock      clockwork.Clock
	policy     retry.Policy
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.UpstreamMetrics
}

var _ domain.PostSource = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

func NewClient(baseURL, bearerToken string, timeout time.Duration, m *metrics.UpstreamMetrics, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      bearerToken,
		clock:      clockwork.NewRealClock(),
		metrics:    m,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   retryInitialBackoff,
			RateLimitBackoff: retryRateLimitBackoff,
			MaxBackoff:       retryMaxBackoff,
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
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.ObserveBreaker(name, to)
		},
	})
	return c
}

// FetchRecentPosts returns up to q.Limit English, non-retweet posts that
// mention any of q.Symbols as a cashtag or hashtag, newest first.
func (c *Client) FetchRecentPosts(ctx context.Context, q domain.PostQuery) ([]domain.RawPost, error) {
	if len(q.Symbols) == 0 || q.Limit <= 0 {
		return []domain.RawPost{}, nil
	}

	start := c.clock.Now()
	v, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchAll(ctx, q)
	})
	c.metrics.RequestDuration.WithLabelValues(sourceName).Observe(c.clock.Since(start).Seconds())

	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		c.metrics.Requests.WithLabelValues(sourceName, result).Inc()
		return nil, fmt.Errorf("%w: twitter search: %w", domain.ErrUpstreamUnavailable, err)
	}

	c.metrics.Requests.WithLabelValues(sourceName, "ok").Inc()
	return v.([]domain.RawPost), nil
}

func (c *Client) fetchAll(ctx context.Context, q domain.PostQuery) ([]domain.RawPost, error) {
	params := url.Values{}
	params.Set("query", BuildQuery(q.Symbols))
	params.Set("max_results", strconv.Itoa(pageSize(q.Limit)))
	params.Set("start_time", c.clock.Now().Add(-q.Lookback).UTC().Format(time.RFC3339))
	params.Set("tweet.fields", "created_at,author_id")

	posts := make([]domain.RawPost, 0, q.Limit)
	for {
		p := c.policy
		p.OnRetry = func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Twitter search failed, retrying", "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
		}

		page, err := retry.Do(ctx, p, classifyError, func(ctx context.Context) (searchResponse, error) {
			return c.searchPage(ctx, params)
		})
		if err != nil {
			return nil, err
		}

		for _, t := range page.Data {
			posts = append(posts, t.toPost())
			if len(posts) == q.Limit {
				return posts, nil
			}
		}

		if page.Meta.NextToken == "" {
			return posts, nil
		}
		params.Set("next_token", page.Meta.NextToken)
	}
}

func (c *Client) searchPage(ctx context.Context, params url.Values) (searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return searchResponse{}, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return searchResponse{}, c.newAPIError(resp, body)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return searchResponse{}, fmt.Errorf("failed to decode search response: %w", err)
	}
	return out, nil
}

// BuildQuery matches each symbol as a cashtag or hashtag, excluding retweets
// and non-English posts.
func BuildQuery(symbols []string) string {
	terms := make([]string, 0, 2*len(symbols))
	for _, s := range symbols {
		terms = append(terms, "$"+s, "#"+s)
	}
	return "(" + strings.Join(terms, " OR ") + ") lang:en -is:retweet"
}

func pageSize(limit int) int {
	return max(minPageSize, min(limit, maxPageSize))
}

type searchResponse struct {
	Data []tweet `json:"data"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

type tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  string    `json:"author_id"`
}

func (t tweet) toPost() domain.RawPost {
	return domain.RawPost{
		ID:        t.ID,
		Text:      t.Text,
		Timestamp: t.CreatedAt,
		Author:    t.AuthorID,
		Source:    sourceName,
		URL:       statusURL + t.ID,
	}
}
