package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

func posts(texts ...string) []domain.RawPost {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domain.RawPost, len(texts))
	for i, text := range texts {
		out[i] = domain.RawPost{Text: text, Timestamp: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func newTestAnalyzer(opts ...Option) *Analyzer {
	return NewAnalyzer(DefaultLexicon(), opts...)
}

func TestAnalyzeSymbol_MixedSentiment(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("AAPL", posts(
		"$AAPL to the moon, bullish!",
		"$AAPL missing earnings, bearish",
		"$AAPL trading flat",
	))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", summary.Symbol)
	assert.Equal(t, 3, summary.TweetCount)
	assert.Equal(t, 1, summary.BullishCount)
	assert.Equal(t, 1, summary.BearishCount)
	assert.Equal(t, 1, summary.NeutralCount)
	assert.Equal(t, 0.5, summary.BullishRatio)
	assert.InDelta(t, 0, summary.SentimentScore, 1e-9)
	assert.Equal(t, domain.LabelNeutral, summary.SentimentLabel)
	assert.Equal(t, []string{"moon", "bullish", "missing", "earnings", "bearish"}, summary.CommonTopics)
}

func TestAnalyzeSymbol_EmptyBatch(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("$TSLA", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.SymbolSummary{
		Symbol:         "TSLA",
		SentimentLabel: domain.LabelNeutral,
		CommonTopics:   []string{},
		PriceMentions:  map[string]int{},
	}, summary)

	body, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"symbol": "TSLA",
		"sentiment_score": 0,
		"sentiment_label": "neutral",
		"tweet_count": 0,
		"bullish_count": 0,
		"bearish_count": 0,
		"neutral_count": 0,
		"bullish_ratio": 0,
		"common_topics": [],
		"price_mentions": {}
	}`, string(body))
}

func TestAnalyzeSymbol_FiltersToTarget(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("$aapl", posts(
		"$AAPL buy now",
		"$MSFT sell everything",
		"nothing about tickers here",
	))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", summary.Symbol)
	assert.Equal(t, 1, summary.TweetCount)
	assert.Equal(t, domain.LabelBullish, summary.SentimentLabel)
	assert.Equal(t, 1.0, summary.BullishRatio)
}

func TestAnalyzeSymbol_ExcludesSymbolFromTopics(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("AAPL", posts("$AAPL AAPL aapl #AAPL earnings"))
	require.NoError(t, err)

	assert.Equal(t, []string{"earnings"}, summary.CommonTopics)
	assert.NotContains(t, summary.CommonTopics, "aapl")
}

func TestAnalyzeSymbol_TopicTieBreakIsFirstSeen(t *testing.T) {
	a := newTestAnalyzer(WithTopicCount(2))

	summary, err := a.AnalyzeSymbol("X", posts(
		"$X alpha beta",
		"$X beta alpha gamma",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, summary.CommonTopics)
}

func TestAnalyzeSymbol_TopicFiltering(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("X", posts("$X a 42 q3 not the report"))
	require.NoError(t, err)

	// Single letters, pure numbers, stopwords and negators never become topics.
	assert.Equal(t, []string{"q3", "report"}, summary.CommonTopics)
}

func TestAnalyzeSymbol_PriceMentions(t *testing.T) {
	a := newTestAnalyzer()

	summary, err := a.AnalyzeSymbol("X", posts(
		"$X at $10 then $10",
		"$X and $12.5",
		"$Y at $99",
	))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"$10": 2, "$12.5": 1}, summary.PriceMentions)
}

func TestAnalyzeSymbol_MissingSymbol(t *testing.T) {
	a := newTestAnalyzer()

	_, err := a.AnalyzeSymbol("  $ ", posts("$AAPL buy"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSymbol)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyzeSymbol_CountInvariants(t *testing.T) {
	a := newTestAnalyzer()

	batches := [][]domain.RawPost{
		nil,
		posts("$Z buy", "$Z buy", "$Z buy"),
		posts("$Z crash", "$Z dump"),
		posts("$Z flat", "$Z sideways"),
		posts("$Z buy", "$Z sell", "$Z meh", "$Z moon rocket", "$Q buy"),
	}

	for _, batch := range batches {
		s, err := a.AnalyzeSymbol("Z", batch)
		require.NoError(t, err)

		assert.Equal(t, s.TweetCount, s.BullishCount+s.BearishCount+s.NeutralCount)
		assert.GreaterOrEqual(t, s.BullishRatio, 0.0)
		assert.LessOrEqual(t, s.BullishRatio, 1.0)
		if s.TweetCount == 0 {
			assert.Zero(t, s.BullishRatio)
		}
		assert.NotContains(t, s.CommonTopics, "z")
	}
}

func TestAnalyzeText(t *testing.T) {
	a := newTestAnalyzer()

	got := a.AnalyzeText("$AAPL hit $150.50 today, huge buy signal")

	assert.Equal(t, domain.LabelBullish, got.Sentiment.Label)
	assert.Equal(t, []string{"AAPL"}, got.Symbols)
	assert.Equal(t, []domain.PriceMention{{Raw: "$150.50", Value: 150.5}}, got.Prices)
	assert.Equal(t, []string{"hit", "today", "huge", "buy", "signal"}, got.Tokens)

	empty := a.AnalyzeText("")
	assert.NotNil(t, empty.Tokens)
	assert.NotNil(t, empty.Symbols)
	assert.NotNil(t, empty.Prices)
	assert.Equal(t, domain.LabelNeutral, empty.Sentiment.Label)
}

func TestCanonicalSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", CanonicalSymbol(" $aapl "))
	assert.Equal(t, "TSLA", CanonicalSymbol("TSLA"))
	assert.Equal(t, "", CanonicalSymbol("$"))
}
