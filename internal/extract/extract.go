// Package extract turns recurring-error groups from the log store into
// a classification report: each group either matches a known playbook
// pattern or becomes a new candidate pattern. Nothing is persisted
// here; applying candidates is the caller's decision.
package extract

import (
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/opskit/errbook/internal/fingerprint"
	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

// Row statuses.
const (
	StatusKnown = "known"
	StatusNew   = "new"
)

// Synthesis limits for candidate patterns.
const (
	matcherPrefixLength = 50
	titleLength         = 60
)

// seedRootCause seeds candidates until someone investigates.
const seedRootCause = "Unknown - investigate logs"

// Options are the extraction thresholds.
type Options struct {
	// KnownThreshold classifies a group as known when the best match
	// scores strictly above it.
	KnownThreshold float64
	// MinKeywordScore is the keyword floor passed to the matcher.
	MinKeywordScore float64
	// MaxRows caps how many groups one run processes.
	MaxRows int
	// HighCount and MediumCount derive candidate severity from the
	// group's occurrence count.
	HighCount   int
	MediumCount int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		KnownThreshold:  80,
		MinKeywordScore: match.DefaultMinScore,
		MaxRows:         logstore.MaxGroups,
		HighCount:       10,
		MediumCount:     5,
	}
}

// RowResult is the classification of one recurring-error group.
type RowResult struct {
	Group  logstore.RecurringGroup `json:"group"`
	Status string                  `json:"status"`
	// Score is the best match score, for known and near-miss rows alike.
	Score float64 `json:"score,omitempty"`
	// Matched is set on known rows.
	Matched *playbook.Pattern `json:"matched,omitempty"`
	// Candidate is set on new rows.
	Candidate *playbook.Pattern `json:"candidate,omitempty"`
}

// Report is the outcome of one extraction run.
type Report struct {
	Rows       []RowResult         `json:"rows"`
	Candidates []*playbook.Pattern `json:"candidates,omitempty"`
	KnownCount int                 `json:"known_count"`
	NewCount   int                 `json:"new_count"`
}

// Extractor classifies recurring-error groups against a playbook.
type Extractor struct {
	opts    Options
	matcher *match.Matcher
}

// New returns an extractor with the given thresholds. Non-positive
// MaxRows falls back to the log store cap.
func New(opts Options) *Extractor {
	if opts.MaxRows <= 0 {
		opts.MaxRows = logstore.MaxGroups
	}
	return &Extractor{
		opts:    opts,
		matcher: &match.Matcher{MinScore: opts.MinKeywordScore},
	}
}

// Run classifies every group, highest count first, capped at MaxRows.
// Known rows carry the matched pattern; new rows carry a synthesized
// candidate. The pattern set is never mutated.
func (e *Extractor) Run(groups []logstore.RecurringGroup, patterns []*playbook.Pattern) *Report {
	rows := make([]logstore.RecurringGroup, len(groups))
	copy(rows, groups)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > e.opts.MaxRows {
		rows = rows[:e.opts.MaxRows]
	}

	report := &Report{Rows: make([]RowResult, 0, len(rows))}
	for _, g := range rows {
		var best []match.Result
		if len(patterns) > 0 {
			best = e.matcher.FindMatches(patterns, g.Message, 1)
		}

		if len(best) > 0 && best[0].Score > e.opts.KnownThreshold {
			report.Rows = append(report.Rows, RowResult{
				Group:   g,
				Status:  StatusKnown,
				Score:   best[0].Score,
				Matched: best[0].Pattern,
			})
			report.KnownCount++
			continue
		}

		row := RowResult{Group: g, Status: StatusNew, Candidate: e.newCandidate(g)}
		if len(best) > 0 {
			row.Score = best[0].Score
		}
		report.Rows = append(report.Rows, row)
		report.Candidates = append(report.Candidates, row.Candidate)
		report.NewCount++
	}
	return report
}

// newCandidate synthesizes a pattern record for an unrecognized group.
func (e *Extractor) newCandidate(g logstore.RecurringGroup) *playbook.Pattern {
	fp := g.Fingerprint
	if fp == "" {
		fp = fingerprint.Normalize(g.Message)
	}

	return &playbook.Pattern{
		ID:          "auto-" + uuid.New().String(),
		Title:       prefix(g.Message, titleLength),
		Category:    fingerprint.Classify(g.Message),
		Severity:    e.severityForCount(g.Count),
		Fingerprint: fp,
		Matcher:     synthesizeMatcher(g.Message),
		Symptoms:    []string{g.Message},
		RootCauses:  []string{seedRootCause},
	}
}

func (e *Extractor) severityForCount(count int) playbook.Severity {
	switch {
	case count >= e.opts.HighCount:
		return playbook.SeverityHigh
	case count >= e.opts.MediumCount:
		return playbook.SeverityMedium
	default:
		return playbook.SeverityLow
	}
}

// synthesizeMatcher escapes a bounded prefix of the message and adds a
// wildcard tail. A prefix this short can both under- and over-match
// longer messages; it is a deliberate heuristic.
func synthesizeMatcher(message string) string {
	p := prefix(message, matcherPrefixLength)
	if p == "" {
		return ""
	}
	return regexp.QuoteMeta(p) + ".*"
}

func prefix(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
