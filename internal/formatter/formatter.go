package formatter

import (
	"fmt"

	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

// MatchReport is the result set rendered by the match and similar commands
type MatchReport struct {
	Query   string          `json:"query"`
	Results []*match.Result `json:"results"`
}

// Stats summarizes playbook and index state for the stats command
type Stats struct {
	PlaybookPath     string         `json:"playbook_path"`
	PatternCount     int            `json:"pattern_count"`
	FixCount         int            `json:"fix_count"`
	HelpfulTotal     int            `json:"helpful_total"`
	HarmfulTotal     int            `json:"harmful_total"`
	ByCategory       map[string]int `json:"by_category"`
	BySeverity       map[string]int `json:"by_severity"`
	IndexDir         string         `json:"index_dir"`
	IndexState       string         `json:"index_state"`
	IndexedCount     int            `json:"indexed_count"`
	MissingFromIndex []string       `json:"missing_from_index,omitempty"`
	ConfigFile       string         `json:"config_file,omitempty"`
}

// Formatter defines the interface for output formatting
type Formatter interface {
	FormatMatches(report *MatchReport) ([]byte, error)
	FormatExtract(report *extract.Report) ([]byte, error)
	FormatPatterns(patterns []*playbook.Pattern) ([]byte, error)
	FormatPattern(p *playbook.Pattern) ([]byte, error)
	FormatStats(stats *Stats) ([]byte, error)
}

// New creates a formatter for the requested output format
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q. Available formats: text, json, markdown, csv", format)
	}
}
