package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/retry"
)

var (
	testNow     = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	fastRetries = retry.Policy{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		RateLimitBackoff: 2 * time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
	}
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.UpstreamMetrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := metrics.NewUpstreamMetrics(prometheus.NewRegistry())
	c := NewClient(srv.URL+"/", "test-token", 5*time.Second, m,
		WithClock(clockwork.NewFakeClockAt(testNow)),
		WithRetryPolicy(fastRetries),
	)
	return c, m
}

func writeTweets(w http.ResponseWriter, next string, ids ...string) {
	w.Header().Set("Content-Type", "application/json")
	data := ""
	for i, id := range ids {
		if i > 0 {
			data += ","
		}
		data += fmt.Sprintf(`{"id":%q,"text":"$AAPL tweet %s","created_at":"2026-03-10T14:00:00.000Z","author_id":"u%s"}`, id, id, id)
	}
	_, _ = fmt.Fprintf(w, `{"data":[%s],"meta":{"result_count":%d,"next_token":%q}}`, data, len(ids), next)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "($AAPL OR #AAPL) lang:en -is:retweet", BuildQuery([]string{"AAPL"}))
	assert.Equal(t, "($AAPL OR #AAPL OR $TSLA OR #TSLA) lang:en -is:retweet", BuildQuery([]string{"AAPL", "TSLA"}))
}

func TestPageSize(t *testing.T) {
	tests := []struct{ limit, want int }{
		{1, 10},
		{10, 10},
		{50, 50},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.limit), func(t *testing.T) {
			assert.Equal(t, tt.want, pageSize(tt.limit))
		})
	}
}

func TestFetchRecentPosts_Request(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "($AAPL OR #AAPL) lang:en -is:retweet", q.Get("query"))
		assert.Equal(t, "50", q.Get("max_results"))
		assert.Equal(t, "2026-03-09T15:00:00Z", q.Get("start_time"))
		assert.Equal(t, "created_at,author_id", q.Get("tweet.fields"))

		writeTweets(w, "", "1", "2")
	})

	posts, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{
		Symbols: []string{"AAPL"}, Lookback: 24 * time.Hour, Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, domain.RawPost{
		ID:        "1",
		Text:      "$AAPL tweet 1",
		Timestamp: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		Author:    "u1",
		Source:    "twitter",
		URL:       "https://twitter.com/i/web/status/1",
	}, posts[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(sourceName, "ok")))
}

func TestFetchRecentPosts_Paginates(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			assert.Empty(t, r.URL.Query().Get("next_token"))
			writeTweets(w, "page2", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
		case 2:
			assert.Equal(t, "page2", r.URL.Query().Get("next_token"))
			writeTweets(w, "page3", "11", "12", "13", "14", "15", "16", "17", "18", "19", "20")
		default:
			t.Error("fetched past the limit")
		}
	})

	posts, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{
		Symbols: []string{"AAPL"}, Lookback: time.Hour, Limit: 15,
	})
	require.NoError(t, err)
	assert.Len(t, posts, 15)
	assert.Equal(t, "15", posts[14].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchRecentPosts_EmptyResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	posts, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{
		Symbols: []string{"ZZZZ"}, Lookback: time.Hour, Limit: 10,
	})
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestFetchRecentPosts_NoSymbolsSkipsRequest(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	posts, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{Lookback: time.Hour, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFetchRecentPosts_RetriesTransientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusServiceUnavailable},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.Header().Set("x-rate-limit-reset", strconv.FormatInt(testNow.Add(time.Minute).Unix(), 10))
					w.WriteHeader(tt.status)
					return
				}
				writeTweets(w, "", "1")
			})

			posts, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{
				Symbols: []string{"AAPL"}, Lookback: time.Hour, Limit: 10,
			})
			require.NoError(t, err)
			assert.Len(t, posts, 1)
			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestFetchRecentPosts_PermanentFailure(t *testing.T) {
	var calls atomic.Int32
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized"}`))
	})

	_, err := c.FetchRecentPosts(context.Background(), domain.PostQuery{
		Symbols: []string{"AAPL"}, Lookback: time.Hour, Limit: 10,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Unauthorized")

	assert.Equal(t, int32(1), calls.Load(), "4xx should not be retried")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(sourceName, "error")))
}

func TestFetchRecentPosts_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c.policy.MaxAttempts = 1

	q := domain.PostQuery{Symbols: []string{"AAPL"}, Lookback: time.Hour, Limit: 10}
	for range breakerTrips {
		_, err := c.FetchRecentPosts(context.Background(), q)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, c.breaker.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues(sourceName)))

	_, err := c.FetchRecentPosts(context.Background(), q)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(breakerTrips), calls.Load(), "open breaker should not reach the server")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(sourceName, "rejected")))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Action
	}{
		{"rate limited", &APIError{StatusCode: http.StatusTooManyRequests}, retry.After},
		{"server error", &APIError{StatusCode: http.StatusInternalServerError}, retry.Retry},
		{"bad request", &APIError{StatusCode: http.StatusBadRequest}, retry.Stop},
		{"forbidden", &APIError{StatusCode: http.StatusForbidden}, retry.Stop},
		{"transport", fmt.Errorf("search request failed: %w", context.DeadlineExceeded), retry.Retry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestNewAPIError_RateLimitReset(t *testing.T) {
	c := NewClient("http://unused", "t", time.Second, metrics.NewUpstreamMetrics(prometheus.NewRegistry()),
		WithClock(clockwork.NewFakeClockAt(testNow)))

	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("x-rate-limit-reset", strconv.FormatInt(testNow.Add(42*time.Second).Unix(), 10))
	assert.Equal(t, 42*time.Second, c.newAPIError(resp, nil).RetryDelay())

	resp.Header.Set("x-rate-limit-reset", strconv.FormatInt(testNow.Add(-time.Minute).Unix(), 10))
	assert.Zero(t, c.newAPIError(resp, nil).RetryDelay(), "reset in the past gives no hint")

	resp.Header.Set("x-rate-limit-reset", "garbage")
	assert.Zero(t, c.newAPIError(resp, nil).RetryDelay())
}
