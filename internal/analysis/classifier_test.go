package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

func TestClassify_DefaultLexicon(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	tests := []struct {
		name   string
		tokens []string
		score  float64
		label  domain.Label
	}{
		{"no matches", []string{"trading", "flat"}, 0, domain.LabelNeutral},
		{"empty", nil, 0, domain.LabelNeutral},
		{"bullish only", []string{"to", "the", "moon", "bullish"}, 1, domain.LabelBullish},
		{"bearish only", []string{"missing", "earnings", "bearish"}, -1, domain.LabelBearish},
		{"balanced", []string{"buy", "sell"}, 0, domain.LabelNeutral},
		{"mixed leaning bullish", []string{"buy", "buy", "sell"}, 1.0 / 3.0, domain.LabelBullish},
		{"negated bullish", []string{"not", "bullish"}, -1, domain.LabelBearish},
		{"negator outside window", []string{"not", "really", "very", "bullish"}, 1, domain.LabelBullish},
		{"light weight under one", []string{"up"}, 0.5, domain.LabelBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.tokens)

			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.label, got.Label)
			assert.GreaterOrEqual(t, got.Score, -1.0)
			assert.LessOrEqual(t, got.Score, 1.0)
		})
	}
}

func TestClassify_CustomLexicon(t *testing.T) {
	lex, err := NewLexicon(
		map[string]float64{"good": 2, "meh": 0.05},
		map[string]float64{"bad": 1},
		[]string{"not"},
		nil,
	)
	require.NoError(t, err)
	c := NewClassifier(lex)

	got := c.Classify([]string{"good", "bad"})
	assert.InDelta(t, 1.0/3.0, got.Score, 1e-9)
	assert.Equal(t, 2.0, got.MatchedBullish)
	assert.Equal(t, 1.0, got.MatchedBearish)

	// Total weight below one is divided by one, keeping the score small.
	got = c.Classify([]string{"meh"})
	assert.InDelta(t, 0.05, got.Score, 1e-9)
	assert.Equal(t, domain.LabelNeutral, got.Label)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultLexicon())
	tokens := Normalize("Huge breakout, not a crash. Buy the dip, sell the rip").Tokens

	first := c.Classify(tokens)
	for range 10 {
		assert.Equal(t, first, c.Classify(tokens))
	}
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.Label
	}{
		{0.11, domain.LabelBullish},
		{0.1, domain.LabelNeutral},
		{0, domain.LabelNeutral},
		{-0.1, domain.LabelNeutral},
		{-0.11, domain.LabelBearish},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFor(tt.score), "score %v", tt.score)
	}
}
