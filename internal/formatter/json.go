package formatter

import (
	"encoding/json"

	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/playbook"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// MatchesJSONOutput wraps match results with their query
type MatchesJSONOutput struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

// ExtractJSONOutput wraps an extraction report with its summary
type ExtractJSONOutput struct {
	Summary    *ExtractSummary     `json:"summary"`
	Rows       []extract.RowResult `json:"rows"`
	Candidates []*playbook.Pattern `json:"candidates,omitempty"`
}

// ExtractSummary is the roll-up section of an extraction report
type ExtractSummary struct {
	Groups int `json:"groups"`
	Known  int `json:"known"`
	New    int `json:"new"`
}

// PatternsJSONOutput wraps a playbook listing
type PatternsJSONOutput struct {
	Count    int                 `json:"count"`
	Patterns []*playbook.Pattern `json:"patterns"`
}

func (f *jsonFormatter) FormatMatches(report *MatchReport) ([]byte, error) {
	output := &MatchesJSONOutput{
		Query:   report.Query,
		Count:   len(report.Results),
		Results: report.Results,
	}
	return json.MarshalIndent(output, "", "  ")
}

func (f *jsonFormatter) FormatExtract(report *extract.Report) ([]byte, error) {
	output := &ExtractJSONOutput{
		Summary: &ExtractSummary{
			Groups: len(report.Rows),
			Known:  report.KnownCount,
			New:    report.NewCount,
		},
		Rows:       report.Rows,
		Candidates: report.Candidates,
	}
	return json.MarshalIndent(output, "", "  ")
}

func (f *jsonFormatter) FormatPatterns(patterns []*playbook.Pattern) ([]byte, error) {
	output := &PatternsJSONOutput{
		Count:    len(patterns),
		Patterns: patterns,
	}
	return json.MarshalIndent(output, "", "  ")
}

func (f *jsonFormatter) FormatPattern(p *playbook.Pattern) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

func (f *jsonFormatter) FormatStats(stats *Stats) ([]byte, error) {
	return json.MarshalIndent(stats, "", "  ")
}
