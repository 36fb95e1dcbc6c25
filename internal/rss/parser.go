package rss

import (
	"html"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/deusflow/siernews/internal/news"
)

// Parse turns a raw RSS/Atom document into articles in document order.
// It never fails: documents gofeed rejects go through a lenient scanner,
// and items without a usable title or link are dropped.
func Parse(raw string) []news.Article {
	if strings.TrimSpace(raw) == "" {
		return []news.Article{}
	}

	feed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return parseLenient(raw)
	}

	articles := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := cleanText(item.Link)
		if link == "" {
			link = cleanText(item.GUID)
		}
		a, ok := newArticle(cleanText(item.Title), link, cleanText(item.Description), itemImage(item))
		if ok {
			articles = append(articles, a)
		}
	}
	return articles
}

func newArticle(title, link, description, image string) (news.Article, bool) {
	if title == "" || link == "" {
		return news.Article{}, false
	}
	return news.Article{
		Title:       title,
		URL:         link,
		Description: description,
		ImageURL:    strings.TrimSpace(image),
	}, true
}

// itemImage applies the image precedence: media:thumbnail, then an image
// media:content, then an image enclosure.
func itemImage(item *gofeed.Item) string {
	media := item.Extensions["media"]

	for _, e := range mediaExtensions(media, "thumbnail") {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			return u
		}
	}
	for _, e := range mediaExtensions(media, "content") {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" && isImageType(e.Attrs["type"]) {
			return u
		}
	}
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if u := strings.TrimSpace(enc.URL); u != "" && isImageType(enc.Type) {
			return u
		}
	}
	return ""
}

// mediaExtensions returns media:<name> elements, including ones nested in
// media:group.
func mediaExtensions(media map[string][]ext.Extension, name string) []ext.Extension {
	if media == nil {
		return nil
	}
	out := append([]ext.Extension(nil), media[name]...)
	for _, g := range media["group"] {
		out = append(out, g.Children[name]...)
	}
	return out
}

func isImageType(t string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(t)), "image")
}

var cdataRe = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

// cleanText decodes markup entities, then unwraps CDATA sections and trims.
// Entities inside CDATA are decoded too, and escaped CDATA markers decode
// into literal ones before unwrapping.
func cleanText(s string) string {
	return strings.TrimSpace(cdataRe.ReplaceAllString(html.UnescapeString(s), "$1"))
}
