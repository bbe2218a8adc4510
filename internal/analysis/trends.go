package analysis

import (
	"slices"
	"strings"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

// AnalyzeTrends summarizes each symbol against the same shared batch and
// reports the topics that appear in two or more symbols' common topics.
func (a *Analyzer) AnalyzeTrends(symbols []string, posts []domain.RawPost) (domain.TrendReport, error) {
	summaries, err := a.summarizeAll(symbols, a.AnalyzePosts(posts))
	if err != nil {
		return domain.TrendReport{}, err
	}

	report := domain.TrendReport{
		MarketInsights:   make(map[string]domain.SymbolSummary, len(summaries)),
		CorrelatedTopics: correlatedTopics(summaries),
		MarketMood:       LabelFor(meanActiveScore(summaries)),
	}
	report.SectorSentiment = report.MarketMood

	for _, s := range summaries {
		report.MarketInsights[s.Symbol] = s
	}

	return report, nil
}

// summarizeAll returns one summary per distinct symbol, in request order.
func (a *Analyzer) summarizeAll(symbols []string, analyzed []AnalyzedPost) ([]domain.SymbolSummary, error) {
	if len(symbols) == 0 {
		return nil, ErrMissingSymbol
	}

	summaries := make([]domain.SymbolSummary, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))

	for _, sym := range symbols {
		s, err := a.Summarize(sym, analyzed)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[s.Symbol]; dup {
			continue
		}
		seen[s.Symbol] = struct{}{}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

func correlatedTopics(summaries []domain.SymbolSummary) []string {
	counts := make(map[string]int)
	var order []string

	for _, s := range summaries {
		for _, topic := range s.CommonTopics {
			if counts[topic] == 0 {
				order = append(order, topic)
			}
			counts[topic]++
		}
	}

	return nonNil(slices.DeleteFunc(order, func(topic string) bool {
		return counts[topic] < 2
	}))
}

// meanActiveScore averages sentiment over symbols that had at least one post.
func meanActiveScore(summaries []domain.SymbolSummary) float64 {
	var total float64
	var n int
	for _, s := range summaries {
		if s.TweetCount == 0 {
			continue
		}
		total += s.SentimentScore
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func lowerSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[strings.ToLower(CanonicalSymbol(s))] = struct{}{}
	}
	return set
}
