package finnhub

import (
	"context"
	"net/http"
	"time"

	finnhubapi "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const (
	dailyResolution = "D"
	candlesOK       = "ok"
)

// Profile returns false when Finnhub answers with an empty profile, which is
// how it reports unknown symbols.
func (s *QuoteSource) Profile(ctx context.Context, symbol string) (domain.CompanyProfile, bool, error) {
	p, err := execute(ctx, s.c, "profile", func(ctx context.Context) (finnhubapi.CompanyProfile2, *http.Response, error) {
		return s.c.api.CompanyProfile2(ctx).Symbol(symbol).Execute()
	})
	if err != nil {
		return domain.CompanyProfile{}, false, err
	}

	name := stringOf(p.Name)
	if name == "" {
		return domain.CompanyProfile{}, false, nil
	}
	return domain.CompanyProfile{
		Name:      name,
		Industry:  stringOf(p.FinnhubIndustry),
		MarketCap: float64Of(p.MarketCapitalization),
	}, true, nil
}

// DailyCloses returns daily closing prices between from and to, oldest first.
// A "no_data" answer yields an empty slice.
func (s *QuoteSource) DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]float64, error) {
	candles, err := execute(ctx, s.c, "candles", func(ctx context.Context) (finnhubapi.StockCandles, *http.Response, error) {
		return s.c.api.StockCandles(ctx).Symbol(symbol).Resolution(dailyResolution).From(from.Unix()).To(to.Unix()).Execute()
	})
	if err != nil {
		return nil, err
	}

	if stringOf(candles.S) != candlesOK || candles.C == nil {
		return []float64{}, nil
	}
	closes := make([]float64, 0, len(*candles.C))
	for _, c := range *candles.C {
		closes = append(closes, float64Of(&c))
	}
	return closes, nil
}
