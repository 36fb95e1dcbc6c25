package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deusflow/siernews/internal/config"
	"github.com/deusflow/siernews/internal/gemini"
	"github.com/deusflow/siernews/internal/httpclient"
	"github.com/deusflow/siernews/internal/logger"
	"github.com/deusflow/siernews/internal/metrics"
	"github.com/deusflow/siernews/internal/news"
	"github.com/deusflow/siernews/internal/ratelimit"
	"github.com/deusflow/siernews/internal/rss"
	"github.com/deusflow/siernews/internal/slack"
	"github.com/deusflow/siernews/internal/storage"
)

// FeedSource fetches articles from feed URLs and attaches preview images.
type FeedSource interface {
	FetchAll(ctx context.Context, sources []string) []news.Article
	EnrichWithImages(ctx context.Context, articles []news.Article) []news.Article
}

// Summarizer never fails; it falls back to placeholder text.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) string
}

type Poster interface {
	Post(ctx context.Context, a news.Article, summary string) error
}

// HistoryStore persists the URLs of processed articles between runs.
type HistoryStore interface {
	Load() []string
	Save(urls []string) error
}

// Pipeline runs one fetch-to-post pass.
type Pipeline struct {
	Feeds        []string
	Source       FeedSource
	Summarizer   Summarizer
	Poster       Poster
	History      HistoryStore
	Pacer        *ratelimit.Pacer
	MaxArticles  int
	EnrichImages bool
	Metrics      *metrics.Metrics
}

// Execute fetches every feed, keeps the unseen articles, posts the best
// MaxArticles of them and records their URLs. Delivery failures are logged
// and counted; the URL is recorded anyway so a broken item is not retried
// forever. Only a failure to persist the history is returned.
func (p *Pipeline) Execute(ctx context.Context) error {
	m := p.Metrics
	if m == nil {
		m = metrics.Global
	}

	logger.Info("fetching feeds", "count", len(p.Feeds))
	all := p.Source.FetchAll(ctx, p.Feeds)
	logger.Info("articles fetched", "count", len(all))

	seen := p.History.Load()
	fresh := uniqueByURL(storage.FilterUnseen(all, seen))
	m.AddDuplicatesFiltered(len(all) - len(fresh))

	if len(fresh) == 0 {
		logger.Info("no new articles, nothing to post")
		return nil
	}

	ranked := news.RankWithScores(fresh)
	if len(ranked) > p.MaxArticles {
		ranked = ranked[:p.MaxArticles]
	}

	selected := make([]news.Article, 0, len(ranked))
	for i, s := range ranked {
		logger.Debug("selected article", "rank", i+1, "score", s.Score, "categories", news.MatchedCategories(s.Article), "title", s.Title)
		selected = append(selected, s.Article)
	}
	logger.Info("articles selected", "new", len(fresh), "selected", len(selected))

	if p.EnrichImages {
		selected = p.Source.EnrichWithImages(ctx, selected)
	}

	processed := make([]string, 0, len(selected))
	var runErr error
	for i, a := range selected {
		if err := p.wait(ctx); err != nil {
			runErr = fmt.Errorf("run interrupted: %w", err)
			break
		}

		logger.Info("processing article", "n", i+1, "of", len(selected), "title", a.Title)
		summary := p.Summarizer.Summarize(ctx, a.Title, a.Description)

		if err := p.Poster.Post(ctx, a, summary); err != nil {
			logger.Error("failed to post article", "url", a.URL, "error", err)
			m.IncrementMessagesFailed()
		} else {
			m.IncrementMessagesSent()
		}
		processed = append(processed, a.URL)
	}

	if len(processed) > 0 {
		if err := p.History.Save(append(seen, processed...)); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to save posted urls: %w", err))
		}
		logger.Info("posted url history updated", "added", len(processed))
	}
	return runErr
}

func (p *Pipeline) wait(ctx context.Context) error {
	if p.Pacer == nil {
		return ctx.Err()
	}
	return p.Pacer.Wait(ctx)
}

// uniqueByURL drops repeats of a URL already seen earlier in the list.
func uniqueByURL(articles []news.Article) []news.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0:0]
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Run builds the production pipeline from cfg and executes it once.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	m := metrics.Global
	defer func() { m.RecordProcessingTime(time.Since(start)) }()

	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		m.SetError(err.Error())
		return fmt.Errorf("failed to load feed list: %w", err)
	}

	gen, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		m.SetError(err.Error())
		return err
	}
	defer gen.Close()

	client := httpclient.New(httpclient.Options{
		Timeout:      cfg.RequestTimeout,
		MaxRedirects: cfg.MaxRedirects,
	})

	p := &Pipeline{
		Feeds:        feeds,
		Source:       rss.NewAggregator(client, m),
		Summarizer:   gemini.NewSummarizer(gen, ratelimit.NewBudget(cfg.MaxGeminiRequests), m),
		Poster:       slack.NewPoster(cfg.SlackWebhookURL),
		History:      storage.NewURLStore(cfg.PostedURLsPath),
		Pacer:        ratelimit.NewPacer(cfg.PostInterval),
		MaxArticles:  cfg.MaxArticles,
		EnrichImages: cfg.EnrichImages,
		Metrics:      m,
	}

	if err := p.Execute(ctx); err != nil {
		m.SetError(err.Error())
		return err
	}

	m.SetLastRun()
	logger.Info("run completed", "duration", time.Since(start).String())
	return nil
}
