package extract

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/playbook"
)

func group(message string, count int) logstore.RecurringGroup {
	return logstore.RecurringGroup{
		Message:   message,
		Count:     count,
		Level:     "ERROR",
		FirstSeen: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		LastSeen:  time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestRunClassifiesKnownOnRegexMatch(t *testing.T) {
	patterns := []*playbook.Pattern{
		{ID: "conn", Title: "Connection refused", Severity: playbook.SeverityHigh, Matcher: "connection refused"},
	}
	groups := []logstore.RecurringGroup{group("dial tcp: connection refused", 3)}

	report := New(DefaultOptions()).Run(groups, patterns)

	if report.KnownCount != 1 || report.NewCount != 0 {
		t.Fatalf("counts = %d known %d new, want 1/0", report.KnownCount, report.NewCount)
	}
	row := report.Rows[0]
	if row.Status != StatusKnown {
		t.Errorf("status = %q, want known", row.Status)
	}
	if row.Matched == nil || row.Matched.ID != "conn" {
		t.Errorf("matched = %+v, want pattern conn", row.Matched)
	}
	if row.Score != 100 {
		t.Errorf("score = %v, want 100", row.Score)
	}
	if row.Candidate != nil {
		t.Error("known row should not carry a candidate")
	}
	if len(report.Candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(report.Candidates))
	}
}

func TestRunScoreAtThresholdIsNew(t *testing.T) {
	// Four of five keywords shared: Jaccard 4/5 = exactly 80, which is
	// not strictly above the threshold, so the row stays new.
	patterns := []*playbook.Pattern{
		{ID: "near", Title: "alpha beta gamma delta epsilon", Severity: playbook.SeverityLow},
	}
	groups := []logstore.RecurringGroup{group("alpha beta gamma delta", 1)}

	report := New(DefaultOptions()).Run(groups, patterns)

	if report.NewCount != 1 {
		t.Fatalf("NewCount = %d, want 1", report.NewCount)
	}
	row := report.Rows[0]
	if row.Status != StatusNew {
		t.Errorf("status = %q, want new", row.Status)
	}
	if row.Score != 80 {
		t.Errorf("near-miss score = %v, want 80", row.Score)
	}
	if row.Candidate == nil {
		t.Fatal("new row must carry a candidate")
	}
}

func TestRunCandidateDerivation(t *testing.T) {
	message := "dial tcp 10.0.0.1:5432: connect: connection refused"
	g := group(message, 12)

	report := New(DefaultOptions()).Run([]logstore.RecurringGroup{g}, nil)

	if report.NewCount != 1 || len(report.Candidates) != 1 {
		t.Fatalf("want exactly one new candidate, got %+v", report)
	}
	c := report.Candidates[0]

	if !strings.HasPrefix(c.ID, "auto-") {
		t.Errorf("id = %q, want auto- prefix", c.ID)
	}
	if c.Title != message {
		t.Errorf("title = %q, want full message under 60 chars", c.Title)
	}
	if c.Category != "network" {
		t.Errorf("category = %q, want network", c.Category)
	}
	if c.Severity != playbook.SeverityHigh {
		t.Errorf("severity = %q, want high for count 12", c.Severity)
	}
	if c.Fingerprint != "dial tcp <ip>:<port>: connect: connection refused" {
		t.Errorf("fingerprint = %q", c.Fingerprint)
	}

	wantMatcher := regexp.QuoteMeta(message[:50]) + ".*"
	if c.Matcher != wantMatcher {
		t.Errorf("matcher = %q, want %q", c.Matcher, wantMatcher)
	}
	re, err := regexp.Compile("(?i)" + c.Matcher)
	if err != nil {
		t.Fatalf("synthesized matcher does not compile: %v", err)
	}
	if !re.MatchString(message) {
		t.Error("synthesized matcher should match its own message")
	}

	if len(c.Symptoms) != 1 || c.Symptoms[0] != message {
		t.Errorf("symptoms = %v, want the raw message", c.Symptoms)
	}
	if len(c.RootCauses) != 1 || c.RootCauses[0] != "Unknown - investigate logs" {
		t.Errorf("root causes = %v", c.RootCauses)
	}
	if len(c.Fixes) != 0 {
		t.Errorf("fixes = %v, want empty", c.Fixes)
	}
	if c.Feedback.Helpful != 0 || c.Feedback.Harmful != 0 {
		t.Errorf("feedback = %+v, want zeroes", c.Feedback)
	}
}

func TestRunUsesRowSuppliedFingerprint(t *testing.T) {
	g := group("some odd failure", 1)
	g.Fingerprint = "precomputed-key"

	report := New(DefaultOptions()).Run([]logstore.RecurringGroup{g}, nil)
	if got := report.Candidates[0].Fingerprint; got != "precomputed-key" {
		t.Errorf("fingerprint = %q, want the row-supplied key", got)
	}
}

func TestRunSeverityThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  playbook.Severity
	}{
		{count: 12, want: playbook.SeverityHigh},
		{count: 10, want: playbook.SeverityHigh},
		{count: 9, want: playbook.SeverityMedium},
		{count: 5, want: playbook.SeverityMedium},
		{count: 4, want: playbook.SeverityLow},
		{count: 1, want: playbook.SeverityLow},
	}

	e := New(DefaultOptions())
	for _, tt := range tests {
		if got := e.severityForCount(tt.count); got != tt.want {
			t.Errorf("severityForCount(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestRunTruncatesLongTitles(t *testing.T) {
	message := strings.Repeat("x", 70)
	report := New(DefaultOptions()).Run([]logstore.RecurringGroup{group(message, 1)}, nil)

	c := report.Candidates[0]
	if len(c.Title) != 60 {
		t.Errorf("title length = %d, want 60", len(c.Title))
	}
	if c.Title != message[:60] {
		t.Errorf("title = %q, want plain prefix", c.Title)
	}
}

func TestRunOrdersByCountAndCaps(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRows = 3
	groups := []logstore.RecurringGroup{
		group("error one", 1),
		group("error five", 5),
		group("error three", 3),
		group("error four", 4),
		group("error two", 2),
	}

	report := New(opts).Run(groups, nil)

	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want capped at 3", len(report.Rows))
	}
	wantCounts := []int{5, 4, 3}
	for i, want := range wantCounts {
		if report.Rows[i].Group.Count != want {
			t.Errorf("row %d count = %d, want %d", i, report.Rows[i].Group.Count, want)
		}
	}
}

func TestRunSingleGroupAgainstEmptyPlaybook(t *testing.T) {
	report := New(DefaultOptions()).Run([]logstore.RecurringGroup{group("brand new failure mode", 2)}, nil)

	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", len(report.Rows))
	}
	if report.Rows[0].Status != StatusNew {
		t.Errorf("status = %q, want new when nothing scores above threshold", report.Rows[0].Status)
	}
}

func TestRunEmptyInput(t *testing.T) {
	report := New(DefaultOptions()).Run(nil, nil)
	if len(report.Rows) != 0 || report.KnownCount != 0 || report.NewCount != 0 {
		t.Errorf("empty input should produce an empty report, got %+v", report)
	}
}
