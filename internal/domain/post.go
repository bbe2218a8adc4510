package domain

import (
	"context"
	"time"
)

// RawPost is a single social-media post as delivered by a PostSource.
type RawPost struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author,omitempty"`
	Source    string    `json:"source"`
	// Headline is set for news articles; posts without one use Text.
	Headline string `json:"headline,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PostQuery selects recent posts mentioning any of Symbols.
type PostQuery struct {
	Symbols  []string
	Lookback time.Duration
	Limit    int
}

type PostSource interface {
	FetchRecentPosts(ctx context.Context, q PostQuery) ([]RawPost, error)
}
