package vectorstore

import (
	"regexp"
	"strings"
)

// minTermLength drops single characters, which carry no signal.
const minTermLength = 2

// Underscore survives so identifiers like conn_pool stay one term.
var termSplitRe = regexp.MustCompile(`[^a-z0-9_]+`)

// Tokenize lower-cases text, turns every run of characters outside
// [a-z0-9_] into a space, and returns the remaining terms of at least
// two characters.
func Tokenize(text string) []string {
	cleaned := termSplitRe.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTermLength {
			terms = append(terms, f)
		}
	}
	return terms
}
