package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/siernews/internal/metrics"
	"github.com/deusflow/siernews/internal/news"
	"github.com/deusflow/siernews/internal/ratelimit"
)

type fakeSource struct {
	articles []news.Article
	enriched int
}

func (f *fakeSource) FetchAll(_ context.Context, _ []string) []news.Article {
	return f.articles
}

func (f *fakeSource) EnrichWithImages(_ context.Context, articles []news.Article) []news.Article {
	f.enriched++
	out := make([]news.Article, len(articles))
	for i, a := range articles {
		out[i] = a.WithImage("https://img.example.com/" + a.Title)
	}
	return out
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, title, _ string) string {
	return "summary of " + title
}

type postCall struct {
	article news.Article
	summary string
}

type fakePoster struct {
	calls  []postCall
	failOn map[string]bool
}

func (f *fakePoster) Post(_ context.Context, a news.Article, summary string) error {
	f.calls = append(f.calls, postCall{article: a, summary: summary})
	if f.failOn[a.URL] {
		return errors.New("webhook down")
	}
	return nil
}

func (f *fakePoster) urls() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.article.URL
	}
	return out
}

type fakeHistory struct {
	seen    []string
	saved   []string
	saves   int
	saveErr error
}

func (f *fakeHistory) Load() []string { return append([]string(nil), f.seen...) }

func (f *fakeHistory) Save(urls []string) error {
	f.saves++
	f.saved = append([]string(nil), urls...)
	return f.saveErr
}

func article(title, url string) news.Article {
	return news.Article{Title: title, URL: url}
}

func newPipeline(src *fakeSource, poster *fakePoster, hist *fakeHistory) *Pipeline {
	return &Pipeline{
		Feeds:       []string{"https://feed.example.com/rss"},
		Source:      src,
		Summarizer:  fakeSummarizer{},
		Poster:      poster,
		History:     hist,
		Pacer:       ratelimit.NewPacer(0),
		MaxArticles: 2,
		Metrics:     metrics.New(),
	}
}

func TestExecute_PostsTopRankedAndRecords(t *testing.T) {
	src := &fakeSource{articles: []news.Article{
		article("天気予報", "https://e.com/weather"),
		article("NTTデータが発表", "https://e.com/ntt"),
		article("銀行のDX推進", "https://e.com/bank"),
	}}
	poster := &fakePoster{}
	hist := &fakeHistory{seen: []string{"https://e.com/old"}}

	p := newPipeline(src, poster, hist)
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, []string{"https://e.com/bank", "https://e.com/ntt"}, poster.urls())
	assert.Equal(t, "summary of 銀行のDX推進", poster.calls[0].summary)
	assert.Equal(t, []string{"https://e.com/old", "https://e.com/bank", "https://e.com/ntt"}, hist.saved)
	assert.Equal(t, int64(2), p.Metrics.MessagesSent)
	assert.Equal(t, 0, src.enriched)
}

func TestExecute_SkipsSeen(t *testing.T) {
	src := &fakeSource{articles: []news.Article{
		article("NTTデータ", "https://e.com/a"),
		article("富士通", "https://e.com/b"),
	}}
	poster := &fakePoster{}
	hist := &fakeHistory{seen: []string{"https://e.com/a"}}

	p := newPipeline(src, poster, hist)
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, []string{"https://e.com/b"}, poster.urls())
	assert.Equal(t, int64(1), p.Metrics.DuplicatesFiltered)
}

func TestExecute_NothingNew(t *testing.T) {
	src := &fakeSource{articles: []news.Article{article("NTTデータ", "https://e.com/a")}}
	poster := &fakePoster{}
	hist := &fakeHistory{seen: []string{"https://e.com/a"}}

	require.NoError(t, newPipeline(src, poster, hist).Execute(context.Background()))

	assert.Empty(t, poster.calls)
	assert.Equal(t, 0, hist.saves)
}

func TestExecute_NoArticles(t *testing.T) {
	poster := &fakePoster{}
	hist := &fakeHistory{}

	require.NoError(t, newPipeline(&fakeSource{}, poster, hist).Execute(context.Background()))

	assert.Empty(t, poster.calls)
	assert.Equal(t, 0, hist.saves)
}

func TestExecute_PostFailureStillRecorded(t *testing.T) {
	src := &fakeSource{articles: []news.Article{
		article("銀行のDX", "https://e.com/a"),
		article("NTTデータ", "https://e.com/b"),
	}}
	poster := &fakePoster{failOn: map[string]bool{"https://e.com/a": true}}
	hist := &fakeHistory{}

	p := newPipeline(src, poster, hist)
	require.NoError(t, p.Execute(context.Background()))

	assert.Len(t, poster.calls, 2)
	assert.Equal(t, []string{"https://e.com/a", "https://e.com/b"}, hist.saved)
	assert.Equal(t, int64(1), p.Metrics.MessagesFailed)
	assert.Equal(t, int64(1), p.Metrics.MessagesSent)
}

func TestExecute_SaveFailure(t *testing.T) {
	src := &fakeSource{articles: []news.Article{article("NTTデータ", "https://e.com/a")}}
	hist := &fakeHistory{saveErr: errors.New("read-only filesystem")}

	err := newPipeline(src, &fakePoster{}, hist).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only filesystem")
}

func TestExecute_DuplicateAcrossFeeds(t *testing.T) {
	src := &fakeSource{articles: []news.Article{
		article("NTTデータ", "https://e.com/a"),
		article("NTTデータ (copy)", "https://e.com/a"),
	}}
	poster := &fakePoster{}
	hist := &fakeHistory{}

	require.NoError(t, newPipeline(src, poster, hist).Execute(context.Background()))

	assert.Equal(t, []string{"https://e.com/a"}, poster.urls())
	assert.Equal(t, []string{"https://e.com/a"}, hist.saved)
}

func TestExecute_EnrichImages(t *testing.T) {
	src := &fakeSource{articles: []news.Article{article("NTTデータ", "https://e.com/a")}}
	poster := &fakePoster{}

	p := newPipeline(src, poster, &fakeHistory{})
	p.EnrichImages = true
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, 1, src.enriched)
	require.Len(t, poster.calls, 1)
	assert.True(t, poster.calls[0].article.HasImage())
}

func TestExecute_Cancelled(t *testing.T) {
	src := &fakeSource{articles: []news.Article{article("NTTデータ", "https://e.com/a")}}
	poster := &fakePoster{}
	hist := &fakeHistory{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(src, poster, hist)
	p.Pacer = nil
	err := p.Execute(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, poster.calls)
	assert.Equal(t, 0, hist.saves)
}

func TestUniqueByURL(t *testing.T) {
	in := []news.Article{article("a", "1"), article("b", "2"), article("c", "1")}
	out := uniqueByURL(in)
	assert.Equal(t, []news.Article{article("a", "1"), article("b", "2")}, out)
	assert.Len(t, in, 3)
}
