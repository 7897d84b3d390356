package match

import (
	"math"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The database is down and the connection failed")

	for _, want := range []string{"database", "down", "connection", "failed"} {
		if !got[want] {
			t.Errorf("ExtractKeywords() missing %q, got %v", want, got)
		}
	}
	for _, excluded := range []string{"the", "is", "and"} {
		if got[excluded] {
			t.Errorf("ExtractKeywords() should exclude %q, got %v", excluded, got)
		}
	}
}

func TestExtractKeywordsTokenization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{
			name:  "punctuation splits tokens",
			input: "dial tcp: connection-refused (code=111)",
			want:  map[string]bool{"dial": true, "tcp": true, "connection": true, "refused": true, "code": true, "111": true},
		},
		{
			name:  "short tokens dropped",
			input: "io db up",
			want:  map[string]bool{},
		},
		{
			name:  "empty input",
			input: "",
			want:  map[string]bool{},
		},
		{
			name:  "case folded and deduplicated",
			input: "Timeout TIMEOUT timeout",
			want:  map[string]bool{"timeout": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractKeywords(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for w := range tt.want {
				if !got[w] {
					t.Errorf("ExtractKeywords(%q) missing %q", tt.input, w)
				}
			}
		})
	}
}

func TestScore(t *testing.T) {
	set := func(words ...string) map[string]bool {
		s := make(map[string]bool, len(words))
		for _, w := range words {
			s[w] = true
		}
		return s
	}

	tests := []struct {
		name    string
		query   map[string]bool
		pattern map[string]bool
		want    float64
	}{
		{name: "identical", query: set("database", "timeout"), pattern: set("database", "timeout"), want: 100},
		{name: "disjoint", query: set("disk", "full"), pattern: set("dns", "lookup"), want: 0},
		{name: "partial overlap", query: set("alpha", "beta"), pattern: set("beta", "gamma"), want: 100.0 / 3.0},
		{name: "empty query", query: set(), pattern: set("anything"), want: 0},
		{name: "empty pattern", query: set("anything"), pattern: set(), want: 0},
		{name: "both empty", query: set(), pattern: set(), want: 0},
		{name: "subset", query: set("connection"), pattern: set("connection", "refused", "postgres", "port"), want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.query, tt.pattern)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("Score() = %v, outside [0,100]", got)
			}
		})
	}
}

func TestScoreSymmetric(t *testing.T) {
	a := ExtractKeywords("connection refused by postgres")
	b := ExtractKeywords("postgres connection pool exhausted")

	if Score(a, b) != Score(b, a) {
		t.Errorf("Score not symmetric: %v vs %v", Score(a, b), Score(b, a))
	}
}
