// Package vectorstore builds and queries a TF-IDF vector index over
// playbook patterns. The index is a derived, rebuildable cache: it can
// be empty, stale, or deleted at any time without losing data.
package vectorstore

import (
	"time"
)

// Vector is a sparse TF-IDF vector: term weights plus the cached
// Euclidean magnitude.
type Vector struct {
	Terms     map[string]float64 `json:"terms"`
	Magnitude float64            `json:"magnitude"`
}

// Vocabulary is the fitted state of a vectorizer: the smoothed IDF
// table and the corpus size it was computed from.
type Vocabulary struct {
	DocumentCount int                `json:"document_count"`
	IDF           map[string]float64 `json:"idf"`
	BuiltAt       time.Time          `json:"built_at"`
}

// Entry is one indexed pattern: its vector, the source text the vector
// was computed from, and when it was last rebuilt.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Vector    Vector    `json:"vector"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryResult is one ranked similarity hit.
type QueryResult struct {
	PatternID string  `json:"pattern_id"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}

// State tracks the index lifecycle: Empty until the first build or
// load, Built while in sync with the pattern set, Stale after the
// pattern set changes, Built again after a rebuild.
type State int

const (
	StateEmpty State = iota
	StateBuilt
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilt:
		return "built"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}
