package analysis

import (
	"slices"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

// Monitor builds the watchlist report: per-symbol summaries, the overall
// mood, topics trending across the whole watchlist and the average price
// mentioned per symbol next to its sentiment.
func (a *Analyzer) Monitor(watchlist []string, posts []domain.RawPost) (domain.MonitorReport, error) {
	analyzed := a.AnalyzePosts(posts)

	summaries, err := a.summarizeAll(watchlist, analyzed)
	if err != nil {
		return domain.MonitorReport{}, err
	}

	report := domain.MonitorReport{
		Symbols:                   make([]string, 0, len(summaries)),
		SentimentBySymbol:         make(map[string]float64, len(summaries)),
		OverallMarketSentiment:    LabelFor(meanActiveScore(summaries)),
		PriceSentimentCorrelation: make(map[string]domain.PriceCorrelation),
		Summaries:                 summaries,
	}

	for _, s := range summaries {
		report.Symbols = append(report.Symbols, s.Symbol)
		report.SentimentBySymbol[s.Symbol] = s.SentimentScore

		if avg, ok := averageMentionedPrice(s.PriceMentions); ok {
			report.PriceSentimentCorrelation[s.Symbol] = domain.PriceCorrelation{
				AvgMentionedPrice: avg,
				Sentiment:         s.SentimentScore,
			}
		}
	}

	report.TrendingTopics = a.trendingTopics(report.Symbols, analyzed)

	return report, nil
}

func (a *Analyzer) trendingTopics(symbols []string, analyzed []AnalyzedPost) []string {
	exclude := lowerSet(symbols)
	topics := newTopicCounter()

	for _, p := range analyzed {
		if !slices.ContainsFunc(symbols, p.mentions) {
			continue
		}
		for _, tok := range p.Text.Tokens {
			if a.isTopic(tok, exclude) {
				topics.add(tok)
			}
		}
	}

	return topics.top(a.topicCount)
}

// averageMentionedPrice weights each raw price by how often it was mentioned.
func averageMentionedPrice(mentions map[string]int) (float64, bool) {
	raws := make([]string, 0, len(mentions))
	for raw := range mentions {
		raws = append(raws, raw)
	}
	slices.Sort(raws)

	var sum float64
	var n int
	for _, raw := range raws {
		value, ok := ParsePrice(raw)
		if !ok {
			continue
		}
		sum += value * float64(mentions[raw])
		n += mentions[raw]
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
