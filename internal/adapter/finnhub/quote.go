package finnhub

import (
	"context"
	"net/http"

	finnhubapi "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/shopspring/decimal"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

// QuoteSource implements domain.PriceSource over the quote, profile and
// candle endpoints.
type QuoteSource struct {
	c *Client
}

var _ domain.PriceSource = (*QuoteSource)(nil)

func NewQuoteSource(c *Client) *QuoteSource {
	return &QuoteSource{c: c}
}

// Quote returns false when Finnhub reports a current price of zero, which is
// how it answers for unknown symbols.
func (s *QuoteSource) Quote(ctx context.Context, symbol string) (domain.Quote, bool, error) {
	q, err := execute(ctx, s.c, "quote", func(ctx context.Context) (finnhubapi.Quote, *http.Response, error) {
		return s.c.api.Quote(ctx).Symbol(symbol).Execute()
	})
	if err != nil {
		return domain.Quote{}, false, err
	}

	current := float64Of(q.C)
	if current == 0 {
		return domain.Quote{}, false, nil
	}

	return domain.Quote{
		Symbol:        symbol,
		Current:       current,
		PreviousClose: float64Of(q.Pc),
		Change:        float64Of(q.D),
		PercentChange: float64Of(q.Dp),
		High:          float64Of(q.H),
		Low:           float64Of(q.L),
		Open:          float64Of(q.O),
		Timestamp:     s.c.clock.Now().UTC(),
	}, true, nil
}

// float64Of widens the API's float32 prices, rounding through their shortest
// decimal form so 189.84 stays 189.84.
func float64Of(p *float32) float64 {
	if p == nil {
		return 0
	}
	return decimal.NewFromFloat32(*p).InexactFloat64()
}
