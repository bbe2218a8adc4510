package analysis

import "github.com/anuragratna/twitter-mcp-server/internal/domain"

const (
	labelThreshold = 0.1

	// Polar words preceded by a negator within this many tokens flip sides.
	negationWindow = 2
)

// Classifier scores token sequences against a Lexicon.
type Classifier struct {
	lexicon *Lexicon
}

func NewClassifier(lexicon *Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Classify computes (bullish - bearish) / max(1, bullish + bearish) over the
// matched weights, clamped to [-1, 1].
func (c *Classifier) Classify(tokens []string) domain.SentimentResult {
	var bullish, bearish float64

	for i, tok := range tokens {
		bull, bear := c.lexicon.polarity(tok)
		if bull == 0 && bear == 0 {
			continue
		}
		if c.negated(tokens, i) {
			bull, bear = bear, bull
		}
		bullish += bull
		bearish += bear
	}

	score := clamp((bullish-bearish)/max(1, bullish+bearish), -1, 1)

	return domain.SentimentResult{
		Label:          LabelFor(score),
		Score:          score,
		MatchedBullish: bullish,
		MatchedBearish: bearish,
	}
}

func (c *Classifier) negated(tokens []string, i int) bool {
	for j := max(0, i-negationWindow); j < i; j++ {
		if c.lexicon.isNegator(tokens[j]) {
			return true
		}
	}
	return false
}

// LabelFor maps a score to bullish above 0.1, bearish below -0.1 and neutral
// otherwise.
func LabelFor(score float64) domain.Label {
	switch {
	case score > labelThreshold:
		return domain.LabelBullish
	case score < -labelThreshold:
		return domain.LabelBearish
	default:
		return domain.LabelNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
