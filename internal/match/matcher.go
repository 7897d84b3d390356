package match

import (
	"regexp"
	"sort"

	"github.com/opskit/errbook/internal/playbook"
)

// DefaultMinScore is the keyword-score floor; patterns must score
// strictly above it to be included in results.
const DefaultMinScore = 20

// How a result was matched. Similarity results come from the vector
// index rather than FindMatches.
const (
	MatchedByRegex      = "regex"
	MatchedByKeywords   = "keywords"
	MatchedBySimilarity = "similarity"
)

// Result is one ranked match for a query.
type Result struct {
	Pattern   *playbook.Pattern `json:"pattern"`
	Score     float64           `json:"score"`
	MatchedBy string            `json:"matched_by"`
}

// Matcher scores a query against a pattern set. A pattern's matcher
// regex is authoritative: when it matches, the score is exactly 100
// and keyword overlap is not consulted.
type Matcher struct {
	// MinScore excludes keyword results at or below this value.
	// Regex matches always pass.
	MinScore float64
}

// NewMatcher returns a matcher with the default keyword threshold.
func NewMatcher() *Matcher {
	return &Matcher{MinScore: DefaultMinScore}
}

// FindMatches ranks patterns against the query. Ties keep the original
// pattern order; limit <= 0 means no truncation. The pattern set is
// never mutated.
func (m *Matcher) FindMatches(patterns []*playbook.Pattern, query string, limit int) []Result {
	queryKeywords := ExtractKeywords(query)

	var results []Result
	for _, p := range patterns {
		if re := compileMatcher(p.Matcher); re != nil && re.MatchString(query) {
			results = append(results, Result{Pattern: p, Score: 100, MatchedBy: MatchedByRegex})
			continue
		}

		score := Score(queryKeywords, ExtractKeywords(p.SearchText()))
		if score > m.MinScore {
			results = append(results, Result{Pattern: p, Score: score, MatchedBy: MatchedByKeywords})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// compileMatcher compiles a pattern's matcher case-insensitively.
// Empty or malformed matchers return nil, degrading that pattern to
// keyword-only matching.
func compileMatcher(expr string) *regexp.Regexp {
	if expr == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil
	}
	return re
}
