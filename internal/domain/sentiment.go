package domain

type Label string

const (
	LabelBullish Label = "bullish"
	LabelBearish Label = "bearish"
	LabelNeutral Label = "neutral"
)

// SentimentResult is the classification of a single text.
type SentimentResult struct {
	Label          Label   `json:"label"`
	Score          float64 `json:"score"`
	MatchedBullish float64 `json:"matched_bullish"`
	MatchedBearish float64 `json:"matched_bearish"`
}

type PriceMention struct {
	Raw   string  `json:"raw"`
	Value float64 `json:"value"`
}

// SymbolSummary aggregates every post mentioning one symbol.
type SymbolSummary struct {
	Symbol         string         `json:"symbol"`
	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel Label          `json:"sentiment_label"`
	TweetCount     int            `json:"tweet_count"`
	BullishCount   int            `json:"bullish_count"`
	BearishCount   int            `json:"bearish_count"`
	NeutralCount   int            `json:"neutral_count"`
	BullishRatio   float64        `json:"bullish_ratio"`
	CommonTopics   []string       `json:"common_topics"`
	PriceMentions  map[string]int `json:"price_mentions"`
}

// TrendReport combines per-symbol summaries computed over one shared batch.
type TrendReport struct {
	MarketInsights   map[string]SymbolSummary `json:"market_insights"`
	SectorSentiment  Label                    `json:"sector_sentiment"`
	CorrelatedTopics []string                 `json:"correlated_topics"`
	MarketMood       Label                    `json:"market_mood"`
}

type PriceCorrelation struct {
	AvgMentionedPrice float64 `json:"avg_mentioned_price"`
	Sentiment         float64 `json:"sentiment"`
}

// MonitorReport is the watchlist view over one shared batch.
type MonitorReport struct {
	Symbols                   []string                    `json:"symbols"`
	SentimentBySymbol         map[string]float64          `json:"sentiment_by_symbol"`
	OverallMarketSentiment    Label                       `json:"overall_market_sentiment"`
	TrendingTopics            []string                    `json:"trending_topics"`
	PriceSentimentCorrelation map[string]PriceCorrelation `json:"price_sentiment_correlation"`
	Summaries                 []SymbolSummary             `json:"summaries"`
}

// TextAnalysis is the breakdown of a single free-form text.
type TextAnalysis struct {
	Sentiment SentimentResult `json:"sentiment"`
	Tokens    []string        `json:"tokens"`
	Symbols   []string        `json:"symbols"`
	Prices    []PriceMention  `json:"prices"`
}

// MarketContext pairs a sentiment score with the price direction. Volatility
// is only set when daily history was available.
type MarketContext struct {
	CurrentPrice      float64    `json:"current_price"`
	PreviousClose     float64    `json:"previous_close"`
	PriceTrend        PriceTrend `json:"price_trend"`
	Volatility        *float64   `json:"volatility,omitempty"`
	OverallAssessment string     `json:"overall_assessment"`
}

// NewsItem is the per-post breakdown listed under news_analysis.
type NewsItem struct {
	Title     string          `json:"title"`
	Link      string          `json:"link,omitempty"`
	Sentiment SentimentResult `json:"sentiment"`
}
