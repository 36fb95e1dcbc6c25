package rss

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deusflow/siernews/internal/news"
)

var (
	itemRe = regexp.MustCompile(`(?is)<item[\s>](.*?)</item>`)
	attrRe = regexp.MustCompile(`([\w:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	textTags = tagPatterns(`(?is)<%[1]s(?:\s[^>]*)?>(.*?)</%[1]s>`, "title", "link", "guid", "description")
	attrTags = tagPatterns(`(?is)<%[1]s\s([^>]*)>`, "media:thumbnail", "media:content", "enclosure")
)

func tagPatterns(format string, tags ...string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(tags))
	for _, tag := range tags {
		out[tag] = regexp.MustCompile(fmt.Sprintf(format, regexp.QuoteMeta(tag)))
	}
	return out
}

// parseLenient scans item blocks with regular expressions. It is used for
// documents that are not well-formed XML, so one broken item cannot hide the
// rest of the feed.
func parseLenient(raw string) []news.Article {
	articles := []news.Article{}

	for _, m := range itemRe.FindAllStringSubmatch(raw, -1) {
		item := m[1]

		link := tagText(item, "link")
		if link == "" {
			link = tagText(item, "guid")
		}
		a, ok := newArticle(tagText(item, "title"), link, tagText(item, "description"), lenientImage(item))
		if ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// tagText returns the decoded content of the first <tag>…</tag> in block.
func tagText(block, tag string) string {
	m := textTags[tag].FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return cleanText(m[1])
}

// tagAttrs returns the attribute maps of every <tag …> opening element in block.
func tagAttrs(block, tag string) []map[string]string {
	var out []map[string]string
	for _, m := range attrTags[tag].FindAllStringSubmatch(block, -1) {
		attrs := map[string]string{}
		for _, a := range attrRe.FindAllStringSubmatch(m[1], -1) {
			val := a[2]
			if val == "" {
				val = a[3]
			}
			attrs[strings.ToLower(a[1])] = val
		}
		out = append(out, attrs)
	}
	return out
}

func lenientImage(item string) string {
	for _, attrs := range tagAttrs(item, "media:thumbnail") {
		if u := strings.TrimSpace(attrs["url"]); u != "" {
			return u
		}
	}
	for _, attrs := range tagAttrs(item, "media:content") {
		if u := strings.TrimSpace(attrs["url"]); u != "" && isImageType(attrs["type"]) {
			return u
		}
	}
	for _, attrs := range tagAttrs(item, "enclosure") {
		if u := strings.TrimSpace(attrs["url"]); u != "" && isImageType(attrs["type"]) {
			return u
		}
	}
	return ""
}
