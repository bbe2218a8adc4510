package finnhub

import (
	"context"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	finnhubapi "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"golang.org/x/sync/errgroup"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	maxConcurrency = 4
)

var relatedSymbol = regexp.MustCompile(`^[A-Z]{1,4}$`)

// NewsSource implements domain.PostSource over company news. Each article
// becomes one post whose text carries cashtags for its related symbols.
type NewsSource struct {
	c *Client
}

var _ domain.PostSource = (*NewsSource)(nil)

func NewNewsSource(c *Client) *NewsSource {
	return &NewsSource{c: c}
}

func (s *NewsSource) FetchRecentPosts(ctx context.Context, q domain.PostQuery) ([]domain.RawPost, error) {
	if len(q.Symbols) == 0 || q.Limit <= 0 {
		return []domain.RawPost{}, nil
	}

	now := s.c.clock.Now().UTC()
	since := now.Add(-q.Lookback)
	from, to := since.Format(dateLayout), now.Format(dateLayout)

	perSymbol := make([][]finnhubapi.CompanyNews, len(q.Symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, symbol := range q.Symbols {
		g.Go(func() error {
			news, err := execute(gctx, s.c, "company-news", func(ctx context.Context) ([]finnhubapi.CompanyNews, *http.Response, error) {
				return s.c.api.CompanyNews(ctx).Symbol(symbol).From(from).To(to).Execute()
			})
			perSymbol[i] = news
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	posts := make([]domain.RawPost, 0, q.Limit)
	for i, news := range perSymbol {
		for _, article := range news {
			post, ok := toPost(article, q.Symbols[i])
			if !ok || post.Timestamp.Before(since) {
				continue
			}
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}
			posts = append(posts, post)
		}
	}

	slices.SortStableFunc(posts, func(a, b domain.RawPost) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(posts) > q.Limit {
		posts = posts[:q.Limit]
	}
	return posts, nil
}

func toPost(article finnhubapi.CompanyNews, queried string) (domain.RawPost, bool) {
	if article.Id == nil || article.Datetime == nil {
		return domain.RawPost{}, false
	}

	var text strings.Builder
	text.WriteString(stringOf(article.Headline))
	if summary := stringOf(article.Summary); summary != "" {
		text.WriteString(". ")
		text.WriteString(summary)
	}
	for _, sym := range relatedSymbols(stringOf(article.Related), queried) {
		text.WriteString(" $")
		text.WriteString(sym)
	}

	return domain.RawPost{
		ID:        strconv.FormatInt(*article.Id, 10),
		Text:      text.String(),
		Timestamp: time.Unix(*article.Datetime, 0).UTC(),
		Author:    stringOf(article.Source),
		Source:    sourceName,
		Headline:  stringOf(article.Headline),
		URL:       stringOf(article.Url),
	}, true
}

// relatedSymbols returns the queried symbol followed by any other plain
// tickers from the comma-separated related list.
func relatedSymbols(related, queried string) []string {
	out := []string{queried}
	for _, sym := range strings.Split(related, ",") {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if relatedSymbol.MatchString(sym) && !slices.Contains(out, sym) {
			out = append(out, sym)
		}
	}
	return out
}

func stringOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
