package analysis

import (
	"math"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

// PriceStats compares the last daily close with the mean of the window and
// reports volatility as the sample standard deviation in percent of the mean.
// ok is false with fewer than two closes or a non-positive mean.
func PriceStats(closes []float64) (trend domain.PriceTrend, volatility float64, ok bool) {
	if len(closes) < 2 {
		return "", 0, false
	}

	var sum float64
	for _, c := range closes {
		sum += c
	}
	mean := sum / float64(len(closes))
	if mean <= 0 {
		return "", 0, false
	}

	var sq float64
	for _, c := range closes {
		sq += (c - mean) * (c - mean)
	}
	std := math.Sqrt(sq / float64(len(closes)-1))

	trend = domain.TrendDownward
	if closes[len(closes)-1] > mean {
		trend = domain.TrendUpward
	}
	return trend, std / mean * 100, true
}
