package analysis

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const defaultTopicCount = 5

// ErrMissingSymbol is returned when a target symbol is empty.
var ErrMissingSymbol = fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)

// AnalyzedPost is one post after normalization, classification and extraction.
type AnalyzedPost struct {
	Post      domain.RawPost
	Text      NormalizedText
	Sentiment domain.SentimentResult
	Symbols   []string
	Prices    []domain.PriceMention
}

func (p AnalyzedPost) mentions(symbol string) bool {
	for _, s := range p.Symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// Analyzer runs the full pipeline over post batches.
type Analyzer struct {
	lexicon    *Lexicon
	classifier *Classifier
	topicCount int
}

type Option func(*Analyzer)

// WithTopicCount sets how many common topics a summary lists.
func WithTopicCount(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topicCount = n
		}
	}
}

func NewAnalyzer(lexicon *Lexicon, opts ...Option) *Analyzer {
	a := &Analyzer{
		lexicon:    lexicon,
		classifier: NewClassifier(lexicon),
		topicCount: defaultTopicCount,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) AnalyzePost(post domain.RawPost) AnalyzedPost {
	norm := Normalize(post.Text)
	ext := Extract(post.Text)

	return AnalyzedPost{
		Post:      post,
		Text:      norm,
		Sentiment: a.classifier.Classify(norm.Tokens),
		Symbols:   ext.Symbols,
		Prices:    ext.Prices,
	}
}

func (a *Analyzer) AnalyzePosts(posts []domain.RawPost) []AnalyzedPost {
	out := make([]AnalyzedPost, len(posts))
	for i, p := range posts {
		out[i] = a.AnalyzePost(p)
	}
	return out
}

// AnalyzeText classifies a single free-form text.
func (a *Analyzer) AnalyzeText(text string) domain.TextAnalysis {
	ap := a.AnalyzePost(domain.RawPost{Text: text})

	return domain.TextAnalysis{
		Sentiment: ap.Sentiment,
		Tokens:    nonNil(ap.Text.Tokens),
		Symbols:   nonNil(ap.Symbols),
		Prices:    nonNil(ap.Prices),
	}
}

// AnalyzeSymbol summarizes the posts in the batch that mention symbol.
func (a *Analyzer) AnalyzeSymbol(symbol string, posts []domain.RawPost) (domain.SymbolSummary, error) {
	return a.Summarize(symbol, a.AnalyzePosts(posts))
}

// Summarize folds the analyzed posts mentioning symbol into one summary. An
// empty batch yields a zero summary, not an error.
func (a *Analyzer) Summarize(symbol string, posts []AnalyzedPost) (domain.SymbolSummary, error) {
	symbol = CanonicalSymbol(symbol)
	if symbol == "" {
		return domain.SymbolSummary{}, ErrMissingSymbol
	}

	summary := domain.SymbolSummary{
		Symbol:         symbol,
		SentimentLabel: domain.LabelNeutral,
		CommonTopics:   []string{},
		PriceMentions:  map[string]int{},
	}

	topics := newTopicCounter()
	exclude := map[string]struct{}{strings.ToLower(symbol): {}}
	var total float64

	for _, p := range posts {
		if !p.mentions(symbol) {
			continue
		}

		summary.TweetCount++
		total += p.Sentiment.Score

		switch p.Sentiment.Label {
		case domain.LabelBullish:
			summary.BullishCount++
		case domain.LabelBearish:
			summary.BearishCount++
		default:
			summary.NeutralCount++
		}

		for _, tok := range p.Text.Tokens {
			if a.isTopic(tok, exclude) {
				topics.add(tok)
			}
		}
		for _, pm := range p.Prices {
			summary.PriceMentions[pm.Raw]++
		}
	}

	if summary.TweetCount > 0 {
		summary.SentimentScore = total / float64(summary.TweetCount)
		summary.SentimentLabel = LabelFor(summary.SentimentScore)
	}
	if polar := summary.BullishCount + summary.BearishCount; polar > 0 {
		summary.BullishRatio = float64(summary.BullishCount) / float64(polar)
	}
	summary.CommonTopics = topics.top(a.topicCount)

	return summary, nil
}

func (a *Analyzer) isTopic(tok string, exclude map[string]struct{}) bool {
	if utf8.RuneCountInString(tok) < 2 || !strings.ContainsFunc(tok, unicode.IsLetter) {
		return false
	}
	if a.lexicon.IsStopword(tok) || a.lexicon.isNegator(tok) {
		return false
	}
	_, excluded := exclude[tok]
	return !excluded
}

// CanonicalSymbol uppercases a symbol and strips a leading dollar sign.
func CanonicalSymbol(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "$"))
}

// topicCounter counts tokens and remembers first-seen order for tie-breaks.
type topicCounter struct {
	counts map[string]int
	order  []string
}

func newTopicCounter() *topicCounter {
	return &topicCounter{counts: make(map[string]int)}
}

func (tc *topicCounter) add(tok string) {
	if _, ok := tc.counts[tok]; !ok {
		tc.order = append(tc.order, tok)
	}
	tc.counts[tok]++
}

func (tc *topicCounter) top(n int) []string {
	ranked := slices.Clone(tc.order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return tc.counts[b] - tc.counts[a]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return nonNil(ranked)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
