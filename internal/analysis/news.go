package analysis

import "github.com/anuragratna/twitter-mcp-server/internal/domain"

// NewsAnalysis lists up to limit posts mentioning symbol, in batch order, each
// with its own classification. Posts without a headline are titled by their text.
func (a *Analyzer) NewsAnalysis(symbol string, posts []AnalyzedPost, limit int) []domain.NewsItem {
	symbol = CanonicalSymbol(symbol)
	items := []domain.NewsItem{}
	for _, p := range posts {
		if len(items) >= limit {
			break
		}
		if !p.mentions(symbol) {
			continue
		}

		title := p.Post.Headline
		if title == "" {
			title = p.Post.Text
		}
		items = append(items, domain.NewsItem{
			Title:     title,
			Link:      p.Post.URL,
			Sentiment: p.Sentiment,
		})
	}
	return items
}
