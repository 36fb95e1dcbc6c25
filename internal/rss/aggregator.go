package rss

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/siernews/internal/httpclient"
	"github.com/deusflow/siernews/internal/logger"
	"github.com/deusflow/siernews/internal/metrics"
	"github.com/deusflow/siernews/internal/news"
	"github.com/deusflow/siernews/internal/scraper"
)

// Aggregator fetches feed sources and article pages through one HTTP client.
type Aggregator struct {
	client  httpclient.Getter
	metrics *metrics.Metrics
}

// NewAggregator builds an Aggregator. A nil client gets the default policy,
// nil metrics record into metrics.Global.
func NewAggregator(client httpclient.Getter, m *metrics.Metrics) *Aggregator {
	if client == nil {
		client = httpclient.New(httpclient.Options{})
	}
	if m == nil {
		m = metrics.Global
	}
	return &Aggregator{client: client, metrics: m}
}

type fetchOutcome struct {
	articles []news.Article
	err      error
}

// FetchAll downloads and parses every source concurrently and waits for all of
// them. A failing source is logged and contributes nothing; the merged result
// keeps source order.
func (a *Aggregator) FetchAll(ctx context.Context, sources []string) []news.Article {
	outcomes := make([]fetchOutcome, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			body, err := a.client.Get(ctx, src)
			if err != nil {
				outcomes[i] = fetchOutcome{err: err}
				return nil
			}
			outcomes[i] = fetchOutcome{articles: Parse(string(body))}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	all := []news.Article{}
	ok := 0
	for i, out := range outcomes {
		if out.err != nil {
			a.metrics.IncrementFeedsFailed()
			logger.Error("feed fetch failed, skipping", "source", sources[i], "error", out.err)
			continue
		}
		ok++
		a.metrics.IncrementFeedsFetched()
		logger.Info("feed fetched", "source", sources[i], "articles", len(out.articles))
		all = append(all, out.articles...)
	}

	a.metrics.AddArticlesFetched(len(all))
	logger.Info("processed feeds", "ok", ok, "total", len(sources), "articles", len(all))
	return all
}

// EnrichWithImages looks up a preview image for every article that has none.
// Lookups run concurrently; a failed lookup leaves the article as it was.
// The input slice is not modified and the output keeps its order.
func (a *Aggregator) EnrichWithImages(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	copy(out, articles)

	var g errgroup.Group
	for i, art := range articles {
		if art.HasImage() {
			continue
		}
		g.Go(func() error {
			img, err := scraper.FetchImage(ctx, a.client, art.URL)
			if err != nil {
				logger.Debug("no preview image", "url", art.URL, "error", err)
				return nil
			}
			a.metrics.IncrementImagesFound()
			out[i] = art.WithImage(img)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
