package news

import (
	"regexp"
	"sort"
)

// keyword is one weighted entry of the relevance table.
type keyword struct {
	category string
	pattern  *regexp.Regexp
	weight   int
}

func kw(category, pattern string, weight int) keyword {
	return keyword{category: category, pattern: regexp.MustCompile(`(?i)` + pattern), weight: weight}
}

// keywordTable is read-only after init.
var keywordTable = []keyword{
	// Large system integrators
	kw("sier", `富士通|Fujitsu`, 3),
	kw("sier", `NEC|日本電気`, 3),
	kw("sier", `NTTデータ|NTT Data`, 3),
	kw("sier", `日立|Hitachi`, 3),
	kw("sier", `野村総合研究所|野村総研|NRI`, 3),
	kw("sier", `TIS|SCSK|伊藤忠テクノ|CTCシステム`, 3),
	kw("sier", `アクセンチュア|Accenture|IBM|デロイト`, 2),

	// Finance
	kw("finance", `銀行|証券|保険|金融|FinTech|フィンテック`, 3),
	kw("finance", `日銀|日本銀行|メガバンク|地銀`, 3),
	kw("finance", `資産運用|投資|株式|為替|債券`, 2),

	// IT / DX
	kw("dx", `DX|デジタルトランスフォーメーション|デジタル変革`, 2),
	kw("dx", `生成AI|GenerativeAI|LLM|ChatGPT|Copilot`, 2),
	kw("dx", `クラウド|AWS|Azure|GCP|Google Cloud`, 2),
	kw("dx", `サイバーセキュリティ|セキュリティ|情報漏洩|ランサム`, 2),
	kw("dx", `ERP|SAP|基幹システム|SaaS|PaaS`, 2),
	kw("dx", `システム開発|SI|システムインテグレ`, 2),
	kw("dx", `IT投資|デジタル投資|IT予算`, 2),

	// General business / economy
	kw("business", `経済|景気|GDP|物価|インフレ`, 1),
	kw("business", `企業|ビジネス|経営|M&A|買収|合併`, 1),
}

// Score sums the weight of every keyword entry matching the article's title
// and description. Each entry counts at most once.
func Score(a Article) int {
	text := a.Title + " " + a.Description

	score := 0
	for _, k := range keywordTable {
		if k.pattern.MatchString(text) {
			score += k.weight
		}
	}
	return score
}

// MatchedCategories lists the categories of the entries matching a, in table
// order and without repeats. Used for log output only.
func MatchedCategories(a Article) []string {
	text := a.Title + " " + a.Description

	var out []string
	seen := map[string]struct{}{}
	for _, k := range keywordTable {
		if !k.pattern.MatchString(text) {
			continue
		}
		if _, dup := seen[k.category]; dup {
			continue
		}
		seen[k.category] = struct{}{}
		out = append(out, k.category)
	}
	return out
}

// ScoredArticle pairs an article with its relevance score.
type ScoredArticle struct {
	Article
	Score int
}

// RankWithScores returns a new slice ordered by descending score. Articles with
// equal scores keep their input order.
func RankWithScores(articles []Article) []ScoredArticle {
	scored := make([]ScoredArticle, len(articles))
	for i, a := range articles {
		scored[i] = ScoredArticle{Article: a, Score: Score(a)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Rank is RankWithScores without the scores. The input slice is not modified.
func Rank(articles []Article) []Article {
	scored := RankWithScores(articles)

	out := make([]Article, len(scored))
	for i, s := range scored {
		out[i] = s.Article
	}
	return out
}
