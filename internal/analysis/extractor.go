package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

var (
	tickerPattern = regexp.MustCompile(`\$[A-Z]{1,4}\b`)
	// Decimal only: "$1,200" yields "$1".
	pricePattern = regexp.MustCompile(`\$\d+(?:\.\d+)?`)
)

// Extraction holds the cashtags and price mentions found in one text.
type Extraction struct {
	Symbols []string
	Prices  []domain.PriceMention
}

// Extract scans raw text for $TICKER symbols (deduplicated, without the
// dollar sign) and $-prefixed prices. Prices that do not parse are dropped.
func Extract(text string) Extraction {
	var out Extraction

	seen := make(map[string]struct{})
	for _, m := range tickerPattern.FindAllString(text, -1) {
		sym := m[1:]
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out.Symbols = append(out.Symbols, sym)
	}

	for _, m := range pricePattern.FindAllString(text, -1) {
		value, ok := ParsePrice(m)
		if !ok {
			continue
		}
		out.Prices = append(out.Prices, domain.PriceMention{Raw: m, Value: value})
	}

	return out
}

// ParsePrice parses a raw price string such as "$150.50".
func ParsePrice(raw string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
