package domain

import (
	"context"
	"time"
)

type PriceTrend string

const (
	TrendUpward   PriceTrend = "upward"
	TrendDownward PriceTrend = "downward"
)

// Quote is a point-in-time market quote for one symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Current       float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	Timestamp     time.Time `json:"timestamp"`
}

// Trend is upward when the current price is above the previous close.
func (q Quote) Trend() PriceTrend {
	if q.Current > q.PreviousClose {
		return TrendUpward
	}
	return TrendDownward
}

// CompanyProfile is the static company metadata behind a ticker. MarketCap
// is in millions of the listing currency.
type CompanyProfile struct {
	Name      string  `json:"company_name"`
	Industry  string  `json:"industry"`
	MarketCap float64 `json:"market_cap"`
}

// PriceSource looks up market data. The booleans are false when the symbol
// is unknown. DailyCloses returns closing prices oldest first; an empty slice
// means no history is available.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (Quote, bool, error)
	Profile(ctx context.Context, symbol string) (CompanyProfile, bool, error)
	DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]float64, error)
}
