package match

import (
	"testing"

	"github.com/opskit/errbook/internal/playbook"
)

func TestFindMatchesRegexIsAuthoritative(t *testing.T) {
	patterns := []*playbook.Pattern{
		{
			ID:       "conn-refused",
			Title:    "Totally unrelated words here",
			Severity: playbook.SeverityHigh,
			Matcher:  "ECONNREFUSED",
		},
	}

	results := NewMatcher().FindMatches(patterns, "ECONNREFUSED 127.0.0.1:5432", 5)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 100 {
		t.Errorf("score = %v, want exactly 100", results[0].Score)
	}
	if results[0].MatchedBy != MatchedByRegex {
		t.Errorf("matched by %q, want %q", results[0].MatchedBy, MatchedByRegex)
	}
}

func TestFindMatchesRegexCaseInsensitive(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "oom", Title: "OOM kill", Severity: playbook.SeverityHigh, Matcher: "out of memory"},
	}

	results := NewMatcher().FindMatches(patterns, "container failed: OUT OF MEMORY", 5)
	if len(results) != 1 || results[0].Score != 100 {
		t.Fatalf("case-insensitive regex should score 100, got %+v", results)
	}
}

func TestFindMatchesRegexOutranksKeywordOverlap(t *testing.T) {
	// Both patterns share keywords with the query; only one has a
	// matching regex and it must come out on top at exactly 100.
	patterns := []*playbook.Pattern{
		{
			ID:       "keywords-only",
			Title:    "postgres connection refused on startup",
			Severity: playbook.SeverityMedium,
		},
		{
			ID:       "with-regex",
			Title:    "postgres connection refused",
			Severity: playbook.SeverityHigh,
			Matcher:  `connection refused`,
		},
	}

	results := NewMatcher().FindMatches(patterns, "postgres connection refused", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Pattern.ID != "with-regex" || results[0].Score != 100 {
		t.Errorf("top result = %s score %v, want with-regex at 100", results[0].Pattern.ID, results[0].Score)
	}
	if results[1].MatchedBy != MatchedByKeywords {
		t.Errorf("second result matched by %q, want keywords", results[1].MatchedBy)
	}
}

func TestFindMatchesMalformedMatcherDegradesToKeywords(t *testing.T) {
	patterns := []*playbook.Pattern{
		{
			ID:       "bad-regex",
			Title:    "database connection failed",
			Severity: playbook.SeverityHigh,
			Matcher:  "[unclosed",
			Symptoms: []string{"connection to database lost"},
		},
	}

	results := NewMatcher().FindMatches(patterns, "database connection failed", 5)
	if len(results) != 1 {
		t.Fatalf("malformed matcher should fall back to keywords, got %d results", len(results))
	}
	if results[0].MatchedBy != MatchedByKeywords {
		t.Errorf("matched by %q, want %q", results[0].MatchedBy, MatchedByKeywords)
	}
	if results[0].Score <= 20 || results[0].Score > 100 {
		t.Errorf("keyword score = %v, want in (20,100]", results[0].Score)
	}
}

func TestFindMatchesThresholdIsStrict(t *testing.T) {
	// One shared keyword out of five total: Jaccard 1/5 = exactly 20,
	// which must NOT pass the strictly-greater-than threshold.
	patterns := []*playbook.Pattern{
		{ID: "weak", Title: "alpha", Severity: playbook.SeverityLow},
	}

	results := NewMatcher().FindMatches(patterns, "alpha beta gamma delta epsilon", 5)
	if len(results) != 0 {
		t.Errorf("score of exactly 20 should be excluded, got %+v", results)
	}
}

func TestFindMatchesSortsAndTruncates(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "low", Title: "connection pool", Severity: playbook.SeverityLow},
		{ID: "exact", Title: "whatever", Severity: playbook.SeverityHigh, Matcher: "connection refused"},
		{ID: "mid", Title: "postgres connection lost", Severity: playbook.SeverityMedium},
	}

	results := NewMatcher().FindMatches(patterns, "connection refused postgres", 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want limit 2", len(results))
	}
	if results[0].Pattern.ID != "exact" {
		t.Errorf("top result = %s, want exact", results[0].Pattern.ID)
	}
	if results[1].Pattern.ID != "mid" {
		t.Errorf("second result = %s, want mid", results[1].Pattern.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestFindMatchesTiesKeepOriginalOrder(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "first", Title: "disk full", Severity: playbook.SeverityLow},
		{ID: "second", Title: "disk full", Severity: playbook.SeverityLow},
	}

	results := NewMatcher().FindMatches(patterns, "disk full on device", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Pattern.ID != "first" || results[1].Pattern.ID != "second" {
		t.Errorf("tie order = %s, %s; want first, second", results[0].Pattern.ID, results[1].Pattern.ID)
	}
}

func TestFindMatchesEmptyQuery(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "p1", Title: "database timeout", Severity: playbook.SeverityLow},
	}

	results := NewMatcher().FindMatches(patterns, "", 5)
	if len(results) != 0 {
		t.Errorf("empty query should produce no keyword matches, got %+v", results)
	}
}

func TestFindMatchesNoLimit(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "a", Title: "connection refused", Severity: playbook.SeverityLow},
		{ID: "b", Title: "connection refused", Severity: playbook.SeverityLow},
		{ID: "c", Title: "connection refused", Severity: playbook.SeverityLow},
	}

	results := NewMatcher().FindMatches(patterns, "connection refused", 0)
	if len(results) != 3 {
		t.Errorf("limit 0 should return all matches, got %d", len(results))
	}
}
