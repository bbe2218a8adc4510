package analysis

import "github.com/anuragratna/twitter-mcp-server/internal/domain"

const strongSentiment = 0.2

// Assess combines a sentiment score with the live price direction into a
// one-line verdict.
func Assess(score float64, trend domain.PriceTrend) string {
	switch {
	case score > strongSentiment && trend == domain.TrendUpward:
		return "Strong bullish sentiment with positive momentum"
	case score > 0 && trend == domain.TrendUpward:
		return "Moderately bullish sentiment"
	case score < -strongSentiment && trend == domain.TrendDownward:
		return "Strong bearish sentiment with negative momentum"
	case score < 0 && trend == domain.TrendDownward:
		return "Moderately bearish sentiment"
	default:
		return "Mixed or neutral market sentiment"
	}
}
