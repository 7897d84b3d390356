package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/playbook"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) FormatMatches(report *MatchReport) ([]byte, error) {
	var b strings.Builder

	f.writeTitle(&b, "Match Report")
	fmt.Fprintf(&b, "**Query**: `%s`\n\n", report.Query)

	if len(report.Results) == 0 {
		b.WriteString("No matching patterns found.\n")
		f.writeFooter(&b)
		return []byte(b.String()), nil
	}

	b.WriteString("| Rank | Pattern | Score | Matched By | Severity |\n")
	b.WriteString("|------|---------|-------|------------|----------|\n")
	for i, r := range report.Results {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, r.Pattern.ID, formatScore(r.Score), r.MatchedBy, r.Pattern.Severity)
	}
	b.WriteString("\n")

	for _, r := range report.Results {
		f.writePatternSection(&b, r.Pattern)
	}

	f.writeFooter(&b)
	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatExtract(report *extract.Report) ([]byte, error) {
	var b strings.Builder

	f.writeTitle(&b, "Extraction Report")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Groups | %s |\n", formatNumber(len(report.Rows)))
	fmt.Fprintf(&b, "| Known | %s |\n", formatNumber(report.KnownCount))
	fmt.Fprintf(&b, "| New | %s |\n\n", formatNumber(report.NewCount))

	if len(report.Rows) > 0 {
		b.WriteString("## Recurring Errors\n\n")
		b.WriteString("| Count | Status | Message | Pattern | Score |\n")
		b.WriteString("|-------|--------|---------|---------|-------|\n")
		for _, row := range report.Rows {
			pattern := ""
			switch {
			case row.Matched != nil:
				pattern = row.Matched.ID
			case row.Candidate != nil:
				pattern = row.Candidate.ID
			}
			score := ""
			if row.Score > 0 {
				score = formatScore(row.Score)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				row.Group.Count, row.Status, escapeMarkdown(truncateMessage(row.Group.Message, 80)), pattern, score)
		}
		b.WriteString("\n")
	}

	if len(report.Candidates) > 0 {
		b.WriteString("## New Pattern Candidates\n\n")
		for _, c := range report.Candidates {
			f.writePatternSection(&b, c)
		}
	}

	f.writeFooter(&b)
	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatPatterns(patterns []*playbook.Pattern) ([]byte, error) {
	var b strings.Builder

	f.writeTitle(&b, "Playbook")
	fmt.Fprintf(&b, "%d patterns recorded.\n\n", len(patterns))

	if len(patterns) > 0 {
		b.WriteString("| ID | Title | Category | Severity | Trust |\n")
		b.WriteString("|----|-------|----------|----------|-------|\n")
		for _, p := range patterns {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.0f%% |\n",
				p.ID, escapeMarkdown(p.Title), p.Category, p.Severity, p.TrustScore()*100)
		}
		b.WriteString("\n")
	}

	f.writeFooter(&b)
	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatPattern(p *playbook.Pattern) ([]byte, error) {
	var b strings.Builder
	f.writePatternSection(&b, p)
	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatStats(stats *Stats) ([]byte, error) {
	var b strings.Builder

	f.writeTitle(&b, "Playbook Statistics")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Playbook | %s |\n", stats.PlaybookPath)
	fmt.Fprintf(&b, "| Patterns | %s |\n", formatNumber(stats.PatternCount))
	fmt.Fprintf(&b, "| Fixes Recorded | %s |\n", formatNumber(stats.FixCount))
	fmt.Fprintf(&b, "| Feedback | %d helpful / %d harmful |\n", stats.HelpfulTotal, stats.HarmfulTotal)
	fmt.Fprintf(&b, "| Index State | %s |\n", stats.IndexState)
	fmt.Fprintf(&b, "| Indexed Patterns | %s |\n\n", formatNumber(stats.IndexedCount))

	f.writeCountSection(&b, "By Category", stats.ByCategory)
	f.writeCountSection(&b, "By Severity", stats.BySeverity)

	if len(stats.MissingFromIndex) > 0 {
		b.WriteString("## Not Indexed\n\n")
		for _, id := range stats.MissingFromIndex {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		b.WriteString("\n")
	}

	f.writeFooter(&b)
	return []byte(b.String()), nil
}

// writePatternSection writes one pattern as a full Markdown section
func (f *markdownFormatter) writePatternSection(b *strings.Builder, p *playbook.Pattern) {
	fmt.Fprintf(b, "### %s\n\n", p.ID)
	fmt.Fprintf(b, "**%s**\n\n", escapeMarkdown(p.Title))
	fmt.Fprintf(b, "- Category: %s\n", p.Category)
	fmt.Fprintf(b, "- Severity: %s\n", p.Severity)
	fmt.Fprintf(b, "- Trust: %.0f%% (%d helpful, %d harmful)\n",
		p.TrustScore()*100, p.Feedback.Helpful, p.Feedback.Harmful)
	if p.Fingerprint != "" {
		fmt.Fprintf(b, "- Fingerprint: `%s`\n", p.Fingerprint)
	}
	if p.Matcher != "" {
		fmt.Fprintf(b, "- Matcher: `%s`\n", p.Matcher)
	}
	b.WriteString("\n")

	if len(p.Symptoms) > 0 {
		b.WriteString("**Symptoms**:\n")
		for _, s := range p.Symptoms {
			fmt.Fprintf(b, "- %s\n", escapeMarkdown(s))
		}
		b.WriteString("\n")
	}

	if len(p.RootCauses) > 0 {
		b.WriteString("**Root Causes**:\n")
		for _, c := range p.RootCauses {
			fmt.Fprintf(b, "- %s\n", escapeMarkdown(c))
		}
		b.WriteString("\n")
	}

	if len(p.Fixes) > 0 {
		b.WriteString("**Fixes**:\n")
		for i, fix := range p.Fixes {
			fmt.Fprintf(b, "%d. %s\n", i+1, escapeMarkdown(fix.Step))
			if fix.Command != "" {
				fmt.Fprintf(b, "   ```\n   %s\n   ```\n", fix.Command)
			}
		}
		b.WriteString("\n")
	}
}

// writeCountSection writes a count map as a Markdown table in key order
func (f *markdownFormatter) writeCountSection(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Name | Count |\n")
	b.WriteString("|------|-------|\n")
	for _, key := range sortedKeys(counts) {
		fmt.Fprintf(b, "| %s | %d |\n", key, counts[key])
	}
	b.WriteString("\n")
}

// writeTitle writes the report header with generation timestamp
func (f *markdownFormatter) writeTitle(b *strings.Builder, title string) {
	fmt.Fprintf(b, "# %s\n\n", title)
	fmt.Fprintf(b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
}

func (f *markdownFormatter) writeFooter(b *strings.Builder) {
	b.WriteString("---\n")
	b.WriteString("*Report generated by errbook - Error Pattern Playbook*\n")
}

// escapeMarkdown keeps log text from breaking table and emphasis syntax
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
