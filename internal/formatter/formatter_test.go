package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

func samplePatterns() []*playbook.Pattern {
	return []*playbook.Pattern{
		{
			ID:          "db-conn-refused",
			Title:       "Postgres refuses connections",
			Category:    "database",
			Severity:    playbook.SeverityHigh,
			Fingerprint: "dial tcp <ip>:<port>: connect: connection refused",
			Matcher:     "connection refused.*5432",
			Symptoms:    []string{"dial tcp 10.0.0.5:5432: connect: connection refused"},
			RootCauses:  []string{"connection pool exhausted"},
			Fixes: []playbook.Fix{
				{Step: "restart pgbouncer", Command: "systemctl restart pgbouncer"},
				{Step: "raise max_connections"},
			},
			Feedback: playbook.Feedback{Helpful: 3, Harmful: 1},
		},
		{
			ID:         "redis-timeout",
			Title:      "Redis commands time out under load",
			Category:   "database",
			Severity:   playbook.SeverityMedium,
			Symptoms:   []string{"redis: read timeout"},
			RootCauses: []string{"slow BGSAVE stalls the event loop"},
			Fixes: []playbook.Fix{
				{Step: "move BGSAVE to a replica"},
			},
		},
	}
}

func sampleMatchReport() *MatchReport {
	patterns := samplePatterns()
	return &MatchReport{
		Query: "connection refused to postgres on 5432",
		Results: []*match.Result{
			{Pattern: patterns[0], Score: 100, MatchedBy: match.MatchedByRegex},
			{Pattern: patterns[1], Score: 100.0 / 3.0, MatchedBy: match.MatchedByKeywords},
		},
	}
}

func sampleExtractReport() *extract.Report {
	known := samplePatterns()[0]
	candidate := &playbook.Pattern{
		ID:          "auto-1b2c",
		Title:       "redis: max number of clients reached",
		Category:    "database",
		Severity:    playbook.SeverityMedium,
		Fingerprint: "redis: max number of clients reached",
		Matcher:     "redis: max number of clients reached.*",
		Symptoms:    []string{"redis: max number of clients reached"},
		RootCauses:  []string{"Unknown - investigate logs"},
	}

	first := time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 8, 18, 17, 30, 0, 0, time.UTC)

	return &extract.Report{
		Rows: []extract.RowResult{
			{
				Group: logstore.RecurringGroup{
					Message:     "dial tcp 10.0.0.5:5432: connect: connection refused",
					Fingerprint: "dial tcp <ip>:<port>: connect: connection refused",
					Count:       23,
					Level:       "ERROR",
					FirstSeen:   first,
					LastSeen:    last,
				},
				Status:  extract.StatusKnown,
				Score:   100,
				Matched: known,
			},
			{
				Group: logstore.RecurringGroup{
					Message:     "redis: max number of clients reached",
					Fingerprint: "redis: max number of clients reached",
					Count:       11,
					Level:       "ERROR",
				},
				Status:    extract.StatusNew,
				Candidate: candidate,
			},
		},
		Candidates: []*playbook.Pattern{candidate},
		KnownCount: 1,
		NewCount:   1,
	}
}

func sampleStats() *Stats {
	return &Stats{
		PlaybookPath: "./playbook.yaml",
		PatternCount: 7,
		FixCount:     15,
		HelpfulTotal: 12,
		HarmfulTotal: 3,
		ByCategory:   map[string]int{"network": 3, "database": 4},
		BySeverity:   map[string]int{"high": 2, "medium": 3, "low": 2},
		IndexDir:     ".errbook/index",
		IndexState:   "built",
		IndexedCount: 5,
		MissingFromIndex: []string{
			"db-conn-refused",
			"redis-timeout",
		},
	}
}

func TestNewSelectsFormat(t *testing.T) {
	for _, format := range []string{"", "text", "json", "markdown", "csv"} {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) failed: %v", format, err)
		}
	}

	if _, err := New("yaml", false); err == nil {
		t.Error("Expected error for unsupported format, but got none")
	}
}

func TestJSONFormatMatches(t *testing.T) {
	f := NewJSON()

	out, err := f.FormatMatches(sampleMatchReport())
	if err != nil {
		t.Fatalf("FormatMatches failed: %v", err)
	}

	var decoded struct {
		Query   string `json:"query"`
		Count   int    `json:"count"`
		Results []struct {
			Pattern   *playbook.Pattern `json:"pattern"`
			Score     float64           `json:"score"`
			MatchedBy string            `json:"matched_by"`
		} `json:"results"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if decoded.Query != "connection refused to postgres on 5432" {
		t.Errorf("Expected query in output, got %q", decoded.Query)
	}
	if decoded.Count != 2 {
		t.Errorf("Expected count 2, got %d", decoded.Count)
	}
	if len(decoded.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(decoded.Results))
	}
	if decoded.Results[0].Pattern.ID != "db-conn-refused" {
		t.Errorf("Expected first result db-conn-refused, got %s", decoded.Results[0].Pattern.ID)
	}
	if decoded.Results[0].MatchedBy != "regex" {
		t.Errorf("Expected matched_by regex, got %s", decoded.Results[0].MatchedBy)
	}
}

func TestJSONFormatExtract(t *testing.T) {
	f := NewJSON()

	out, err := f.FormatExtract(sampleExtractReport())
	if err != nil {
		t.Fatalf("FormatExtract failed: %v", err)
	}

	var decoded ExtractJSONOutput
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if decoded.Summary == nil {
		t.Fatal("Expected summary section")
	}
	if decoded.Summary.Groups != 2 || decoded.Summary.Known != 1 || decoded.Summary.New != 1 {
		t.Errorf("Unexpected summary: %+v", decoded.Summary)
	}
	if len(decoded.Candidates) != 1 {
		t.Errorf("Expected 1 candidate, got %d", len(decoded.Candidates))
	}
}

func TestMarkdownFormatMatches(t *testing.T) {
	f := NewMarkdown()

	out, err := f.FormatMatches(sampleMatchReport())
	if err != nil {
		t.Fatalf("FormatMatches failed: %v", err)
	}
	output := string(out)

	if !strings.Contains(output, "# Match Report") {
		t.Errorf("Expected report title, got:\n%s", output)
	}
	if !strings.Contains(output, "| 1 | db-conn-refused | 100 | regex | high |") {
		t.Errorf("Expected results table row, got:\n%s", output)
	}
	if !strings.Contains(output, "### db-conn-refused") {
		t.Errorf("Expected pattern section, got:\n%s", output)
	}
	if !strings.Contains(output, "**Fixes**:") {
		t.Errorf("Expected fixes section, got:\n%s", output)
	}
	if !strings.Contains(output, "systemctl restart pgbouncer") {
		t.Errorf("Expected fix command, got:\n%s", output)
	}
}

func TestMarkdownEscapesTableBreakers(t *testing.T) {
	f := NewMarkdown()

	patterns := samplePatterns()
	patterns[0].Title = "pipe | in title"

	out, err := f.FormatPatterns(patterns)
	if err != nil {
		t.Fatalf("FormatPatterns failed: %v", err)
	}

	if !strings.Contains(string(out), `pipe \| in title`) {
		t.Errorf("Expected escaped pipe in table cell, got:\n%s", out)
	}
}

func TestCSVFormatExtract(t *testing.T) {
	f := NewCSV()

	out, err := f.FormatExtract(sampleExtractReport())
	if err != nil {
		t.Fatalf("FormatExtract failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "Count" {
		t.Errorf("Expected Count header, got %s", records[0][0])
	}
	if records[1][0] != "23" || records[1][1] != "known" || records[1][3] != "db-conn-refused" {
		t.Errorf("Unexpected known row: %v", records[1])
	}
	if records[1][5] != "2026-08-18 09:00:00" {
		t.Errorf("Expected first-seen timestamp, got %s", records[1][5])
	}
	if records[2][1] != "new" || records[2][3] != "auto-1b2c" {
		t.Errorf("Unexpected new row: %v", records[2])
	}
	// Zero timestamps render empty
	if records[2][5] != "" || records[2][6] != "" {
		t.Errorf("Expected empty timestamps on new row: %v", records[2])
	}
}

func TestCSVFormatPatterns(t *testing.T) {
	f := NewCSV()

	out, err := f.FormatPatterns(samplePatterns())
	if err != nil {
		t.Fatalf("FormatPatterns failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if records[1][0] != "db-conn-refused" || records[1][4] != "2" {
		t.Errorf("Unexpected pattern row: %v", records[1])
	}
	// Trust for 3 helpful / 1 harmful is (3+1)/(3+1+2)
	if records[1][7] != "0.67" {
		t.Errorf("Expected trust 0.67, got %s", records[1][7])
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(100); got != "100" {
		t.Errorf("Expected 100, got %s", got)
	}
	if got := formatScore(100.0 / 3.0); got != "33.3" {
		t.Errorf("Expected 33.3, got %s", got)
	}
	if got := formatScore(0); got != "0" {
		t.Errorf("Expected 0, got %s", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber(999); got != "999" {
		t.Errorf("Expected 999, got %s", got)
	}
	if got := formatNumber(12345); got != "12,345" {
		t.Errorf("Expected 12,345, got %s", got)
	}
}
