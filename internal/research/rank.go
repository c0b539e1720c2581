package research

import (
	"regexp"
	"sort"
	"strings"
)

// Deduplicate removes articles sharing a URL, keeping the first occurrence.
// Input order is preserved.
func Deduplicate(articles []RawArticle) []RawArticle {
	seen := make(map[string]bool, len(articles))
	out := make([]RawArticle, 0, len(articles))
	for _, a := range articles {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out
}

// ScoreArticle computes the relevance of one article against the keyword
// set: 2 points per keyword appearing as a case-insensitive substring of the
// title, plus 1 point per whole-word occurrence of each keyword in the body.
func ScoreArticle(a RawArticle, keywords []string) int {
	score := 0
	titleLower := strings.ToLower(a.Title)
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		if kwLower == "" {
			continue
		}
		if strings.Contains(titleLower, kwLower) {
			score += 2
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		score += len(re.FindAllStringIndex(a.Content, -1))
	}
	return score
}

// Rank scores and sorts articles by descending relevance. The sort is
// stable: equal scores keep their input order. Zero-score articles are
// retained.
func Rank(articles []RawArticle, keywords []string) []ScoredArticle {
	scored := make([]ScoredArticle, 0, len(articles))
	for _, a := range articles {
		scored = append(scored, ScoredArticle{RawArticle: a, Score: ScoreArticle(a, keywords)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
