package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon holds polarity weights, negators and stopwords. It is immutable
// once constructed.
type Lexicon struct {
	bullish   map[string]float64
	bearish   map[string]float64
	negators  map[string]struct{}
	stopwords map[string]struct{}
}

type lexiconFile struct {
	Bullish   map[string]float64 `yaml:"bullish"`
	Bearish   map[string]float64 `yaml:"bearish"`
	Negators  []string           `yaml:"negators"`
	Stopwords []string           `yaml:"stopwords"`
}

// NewLexicon copies the given word lists into a new Lexicon. Words are
// lowercased; weights must be positive and finite, and a word may not carry
// both polarities.
func NewLexicon(bullish, bearish map[string]float64, negators, stopwords []string) (*Lexicon, error) {
	lex := &Lexicon{
		bullish:   make(map[string]float64, len(bullish)),
		bearish:   make(map[string]float64, len(bearish)),
		negators:  toSet(negators),
		stopwords: toSet(stopwords),
	}

	if err := copyWeights(lex.bullish, bullish); err != nil {
		return nil, fmt.Errorf("bullish lexicon: %w", err)
	}
	if err := copyWeights(lex.bearish, bearish); err != nil {
		return nil, fmt.Errorf("bearish lexicon: %w", err)
	}

	for word := range lex.bullish {
		if _, ok := lex.bearish[word]; ok {
			return nil, fmt.Errorf("word %q is both bullish and bearish", word)
		}
	}

	if len(lex.bullish) == 0 && len(lex.bearish) == 0 {
		return nil, errors.New("lexicon has no polarity words")
	}

	return lex, nil
}

// ParseLexicon decodes a YAML lexicon document.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return NewLexicon(f.Bullish, f.Bearish, f.Negators, f.Stopwords)
}

// LoadLexicon reads a lexicon from path, or returns the built-in lexicon when
// path is empty.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return ParseLexicon(data)
}

// DefaultLexicon returns the built-in market lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

func (l *Lexicon) polarity(word string) (bullish, bearish float64) {
	return l.bullish[word], l.bearish[word]
}

func (l *Lexicon) isNegator(word string) bool {
	_, ok := l.negators[word]
	return ok
}

func (l *Lexicon) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}

// Size reports the number of polarity words.
func (l *Lexicon) Size() int {
	return len(l.bullish) + len(l.bearish)
}

func copyWeights(dst, src map[string]float64) error {
	for word, weight := range src {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
			return fmt.Errorf("word %q has invalid weight %v", word, weight)
		}
		dst[word] = weight
	}
	return nil
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
