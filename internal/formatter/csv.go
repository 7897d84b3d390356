package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/playbook"
)

// csvFormatter formats results as CSV rows
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) FormatMatches(report *MatchReport) ([]byte, error) {
	headers := []string{"Pattern ID", "Title", "Category", "Severity", "Score", "Matched By"}

	records := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		records = append(records, []string{
			r.Pattern.ID,
			escapeCSVString(r.Pattern.Title),
			r.Pattern.Category,
			string(r.Pattern.Severity),
			formatScore(r.Score),
			r.MatchedBy,
		})
	}

	return writeCSV(headers, records)
}

func (f *csvFormatter) FormatExtract(report *extract.Report) ([]byte, error) {
	headers := []string{"Count", "Status", "Message", "Pattern ID", "Score", "First Seen", "Last Seen"}

	records := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		patternID := ""
		switch {
		case row.Matched != nil:
			patternID = row.Matched.ID
		case row.Candidate != nil:
			patternID = row.Candidate.ID
		}
		score := ""
		if row.Score > 0 {
			score = formatScore(row.Score)
		}
		records = append(records, []string{
			fmt.Sprintf("%d", row.Group.Count),
			row.Status,
			escapeCSVString(row.Group.Message),
			patternID,
			score,
			formatCSVTime(row.Group.FirstSeen),
			formatCSVTime(row.Group.LastSeen),
		})
	}

	return writeCSV(headers, records)
}

func (f *csvFormatter) FormatPatterns(patterns []*playbook.Pattern) ([]byte, error) {
	headers := []string{"ID", "Title", "Category", "Severity", "Fixes", "Helpful", "Harmful", "Trust"}

	records := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		records = append(records, patternCSVRecord(p))
	}

	return writeCSV(headers, records)
}

func (f *csvFormatter) FormatPattern(p *playbook.Pattern) ([]byte, error) {
	headers := []string{"ID", "Title", "Category", "Severity", "Fixes", "Helpful", "Harmful", "Trust"}
	return writeCSV(headers, [][]string{patternCSVRecord(p)})
}

func (f *csvFormatter) FormatStats(stats *Stats) ([]byte, error) {
	headers := []string{"Metric", "Value"}

	records := [][]string{
		{"playbook_path", stats.PlaybookPath},
		{"pattern_count", fmt.Sprintf("%d", stats.PatternCount)},
		{"fix_count", fmt.Sprintf("%d", stats.FixCount)},
		{"helpful_total", fmt.Sprintf("%d", stats.HelpfulTotal)},
		{"harmful_total", fmt.Sprintf("%d", stats.HarmfulTotal)},
		{"index_state", stats.IndexState},
		{"indexed_count", fmt.Sprintf("%d", stats.IndexedCount)},
	}
	for _, key := range sortedKeys(stats.ByCategory) {
		records = append(records, []string{"category_" + key, fmt.Sprintf("%d", stats.ByCategory[key])})
	}
	for _, key := range sortedKeys(stats.BySeverity) {
		records = append(records, []string{"severity_" + key, fmt.Sprintf("%d", stats.BySeverity[key])})
	}

	return writeCSV(headers, records)
}

// patternCSVRecord flattens a pattern into one CSV row
func patternCSVRecord(p *playbook.Pattern) []string {
	return []string{
		p.ID,
		escapeCSVString(p.Title),
		p.Category,
		string(p.Severity),
		fmt.Sprintf("%d", len(p.Fixes)),
		fmt.Sprintf("%d", p.Feedback.Helpful),
		fmt.Sprintf("%d", p.Feedback.Harmful),
		fmt.Sprintf("%.2f", p.TrustScore()),
	}
}

// writeCSV writes headers and records through the csv encoder
func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// formatCSVTime formats time for CSV output
func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// escapeCSVString flattens newlines and truncates long messages
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if len(s) > 100 {
		s = s[:97] + "..."
	}

	return s
}
