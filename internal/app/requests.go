package app

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const (
	DefaultLookbackHours  = 24
	DefaultTrendHours     = 24
	DefaultMinTweets      = 50
	DefaultTimeframeHours = 1

	maxHours      = 168
	maxSymbols    = 20
	minTweets     = 10
	maxTweets     = 500
	maxTextLength = 4000

	// defaultFetchLimit is the post limit for tools that don't take one.
	defaultFetchLimit = 100
)

// symbolPattern accepts only tickers the cashtag extractor can attribute.
var symbolPattern = regexp.MustCompile(`^\$?[A-Za-z]{1,4}$`)

// SentimentRequest is the input of analyze_market_sentiment.
type SentimentRequest struct {
	Symbol        string `json:"symbol" jsonschema:"stock ticker symbol of 1-4 letters such as AAPL or $AAPL"`
	LookbackHours int    `json:"lookback_hours,omitempty" jsonschema:"hours of history to analyze (1-168, default 24)"`
}

// TrendsRequest is the input of analyze_market_trends.
type TrendsRequest struct {
	Symbols   []string `json:"symbols" jsonschema:"ticker symbols to compare (1-20)"`
	Hours     int      `json:"hours,omitempty" jsonschema:"hours of history to analyze (1-168, default 24)"`
	MinTweets int      `json:"min_tweets,omitempty" jsonschema:"number of posts to fetch (10-500, default 50)"`
}

// MonitorRequest is the input of monitor_market.
type MonitorRequest struct {
	Watchlist      []string `json:"watchlist" jsonschema:"ticker symbols to monitor (1-20)"`
	TimeframeHours int      `json:"timeframe_hours,omitempty" jsonschema:"hours of history to analyze (1-168, default 1)"`
}

// TextRequest is the input of analyze_sentiment.
type TextRequest struct {
	Text string `json:"text" jsonschema:"free-form text to classify (1-4000 characters)"`
}

// Request constructors carry the defaults; decoding a JSON body over them
// leaves omitted fields at their default.

func NewSentimentRequest() SentimentRequest {
	return SentimentRequest{LookbackHours: DefaultLookbackHours}
}

func NewTrendsRequest() TrendsRequest {
	return TrendsRequest{Hours: DefaultTrendHours, MinTweets: DefaultMinTweets}
}

func NewMonitorRequest() MonitorRequest {
	return MonitorRequest{TimeframeHours: DefaultTimeframeHours}
}

// ValidationError reports a rejected request field. It matches
// domain.ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NormalizeSymbol validates a ticker and returns it uppercase without '$'.
func NormalizeSymbol(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid(field, "symbol is required")
	}
	if !symbolPattern.MatchString(raw) {
		return "", invalid(field, "%q is not a ticker symbol (1-4 letters, optional leading $)", raw)
	}
	return strings.ToUpper(strings.TrimPrefix(raw, "$")), nil
}

// NormalizeSymbols validates a symbol list and removes duplicates, keeping
// first-seen order.
func NormalizeSymbols(field string, raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, invalid(field, "at least one symbol is required")
	}
	if len(raw) > maxSymbols {
		return nil, invalid(field, "at most %d symbols are allowed, got %d", maxSymbols, len(raw))
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		sym, err := NormalizeSymbol(field, r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out, nil
}

func checkHours(field string, hours int) (time.Duration, error) {
	if hours < 1 || hours > maxHours {
		return 0, invalid(field, "must be between 1 and %d, got %d", maxHours, hours)
	}
	return time.Duration(hours) * time.Hour, nil
}

func (r SentimentRequest) query() (domain.PostQuery, error) {
	symbol, err := NormalizeSymbol("symbol", r.Symbol)
	if err != nil {
		return domain.PostQuery{}, err
	}
	lookback, err := checkHours("lookback_hours", r.LookbackHours)
	if err != nil {
		return domain.PostQuery{}, err
	}
	return domain.PostQuery{Symbols: []string{symbol}, Lookback: lookback, Limit: defaultFetchLimit}, nil
}

func (r TrendsRequest) query() (domain.PostQuery, error) {
	symbols, err := NormalizeSymbols("symbols", r.Symbols)
	if err != nil {
		return domain.PostQuery{}, err
	}
	lookback, err := checkHours("hours", r.Hours)
	if err != nil {
		return domain.PostQuery{}, err
	}
	if r.MinTweets < minTweets || r.MinTweets > maxTweets {
		return domain.PostQuery{}, invalid("min_tweets", "must be between %d and %d, got %d", minTweets, maxTweets, r.MinTweets)
	}
	return domain.PostQuery{Symbols: symbols, Lookback: lookback, Limit: r.MinTweets}, nil
}

func (r MonitorRequest) query() (domain.PostQuery, error) {
	watchlist, err := NormalizeSymbols("watchlist", r.Watchlist)
	if err != nil {
		return domain.PostQuery{}, err
	}
	lookback, err := checkHours("timeframe_hours", r.TimeframeHours)
	if err != nil {
		return domain.PostQuery{}, err
	}
	return domain.PostQuery{Symbols: watchlist, Lookback: lookback, Limit: defaultFetchLimit}, nil
}

func (r TextRequest) validate() error {
	n := utf8.RuneCountInString(r.Text)
	if strings.TrimSpace(r.Text) == "" {
		return invalid("text", "text is required")
	}
	if n > maxTextLength {
		return invalid("text", "must be at most %d characters, got %d", maxTextLength, n)
	}
	return nil
}
