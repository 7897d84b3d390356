// Package match scores queries against playbook patterns, regex-first
// with a keyword-overlap fallback.
package match

import (
	"strings"
	"unicode"
)

// minKeywordLength filters out tokens too short to carry signal.
const minKeywordLength = 3

// stopWords are common words excluded from keyword sets. Technical
// terms stay in so error vocabulary drives the overlap score.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "was": true, "were": true, "with": true, "from": true,
	"this": true, "that": true, "have": true, "has": true, "had": true,
	"been": true, "will": true, "would": true, "could": true, "should": true,
	"its": true, "all": true, "any": true, "can": true, "may": true,
	"when": true, "while": true, "into": true, "your": true, "you": true,
	"after": true, "before": true, "during": true, "between": true,
}

// ExtractKeywords returns the lowercase keyword set of text: tokens of
// at least three characters that are not stop words.
func ExtractKeywords(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	keywords := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) < minKeywordLength || stopWords[w] {
			continue
		}
		keywords[w] = true
	}
	return keywords
}

// Score computes the Jaccard similarity of two keyword sets scaled to
// [0,100]. Either set being empty scores 0.
func Score(query, pattern map[string]bool) float64 {
	if len(query) == 0 || len(pattern) == 0 {
		return 0
	}

	intersection := 0
	for w := range query {
		if pattern[w] {
			intersection++
		}
	}
	union := len(query) + len(pattern) - intersection
	return float64(intersection) / float64(union) * 100
}
