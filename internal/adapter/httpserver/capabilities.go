package httpserver

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/anuragratna/twitter-mcp-server/internal/app"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/version"
)

type capability struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"input_schema"`
	OutputSchema *jsonschema.Schema `json:"output_schema"`
}

type capabilitiesResponse struct {
	Version      string       `json:"version"`
	Provider     string       `json:"provider"`
	Capabilities []capability `json:"capabilities"`
}

type stockRequest struct {
	Symbol string `json:"symbol" jsonschema:"stock ticker symbol, taken from the URL path"`
}

func toolCapability[In, Out any](name, description string) (capability, error) {
	in, err := jsonschema.For[In](nil)
	if err != nil {
		return capability{}, fmt.Errorf("input schema for %s: %w", name, err)
	}
	out, err := jsonschema.For[Out](nil)
	if err != nil {
		return capability{}, fmt.Errorf("output schema for %s: %w", name, err)
	}
	return capability{Name: name, Description: description, InputSchema: in, OutputSchema: out}, nil
}

func buildCapabilities() (capabilitiesResponse, error) {
	builders := []func() (capability, error){
		func() (capability, error) {
			return toolCapability[app.SentimentRequest, app.SentimentResult]("analyze_market_sentiment",
				"Sentiment summary of recent posts mentioning one ticker symbol, with price context when available")
		},
		func() (capability, error) {
			return toolCapability[app.TrendsRequest, domain.TrendReport]("analyze_market_trends",
				"Per-symbol sentiment compared over one shared batch of posts, with sector sentiment and market mood")
		},
		func() (capability, error) {
			return toolCapability[app.MonitorRequest, domain.MonitorReport]("monitor_market",
				"Watchlist snapshot with per-symbol scores, trending topics and price-sentiment correlation")
		},
		func() (capability, error) {
			return toolCapability[app.TextRequest, domain.TextAnalysis]("analyze_sentiment",
				"Classify a single piece of text and list the symbols and prices it mentions")
		},
		func() (capability, error) {
			return toolCapability[stockRequest, app.StockInfo]("stock_info",
				"Current quote and price trend for one ticker symbol")
		},
	}

	caps := make([]capability, 0, len(builders))
	for _, build := range builders {
		c, err := build()
		if err != nil {
			return capabilitiesResponse{}, err
		}
		caps = append(caps, c)
	}

	return capabilitiesResponse{
		Version:      version.Protocol,
		Provider:     version.Provider,
		Capabilities: caps,
	}, nil
}
