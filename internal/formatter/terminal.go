package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/playbook"
)

// terminalFormatter renders playbook output for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) FormatMatches(report *MatchReport) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, "Match Results")

	fmt.Fprintf(&b, "%s Query: %s\n\n", emoji.GetEmoji("match"), report.Query)

	if len(report.Results) == 0 {
		b.WriteString("No matching patterns found.\n")
		b.WriteString("Run 'errbook extract' to mine new patterns from your logs.\n")
		return []byte(b.String()), nil
	}

	for i, r := range report.Results {
		fmt.Fprintf(&b, "%d. %s  score %s (%s)\n", i+1, r.Pattern.ID, formatScore(r.Score), r.MatchedBy)
		f.writeResultTree(&b, r.Pattern)
	}

	return []byte(b.String()), nil
}

// writeResultTree writes the per-pattern detail under a match result line
func (f *terminalFormatter) writeResultTree(b *strings.Builder, p *playbook.Pattern) {
	items := []termfmt.TreeItem{
		{Label: p.Title, Value: ""},
		{
			Label: fmt.Sprintf("%s %s", severitySymbol(p.Severity), p.Severity),
			Value: p.Category,
		},
		{
			Label: "Trust",
			Value: fmt.Sprintf("%s %.0f%%", termfmt.CreateConfidenceBar(p.TrustScore(), f.opts), p.TrustScore()*100),
		},
	}

	if len(p.RootCauses) > 0 {
		items = append(items, termfmt.TreeItem{
			Label:    emoji.GetEmoji("cause") + " Root Causes",
			Children: stringTreeItems(p.RootCauses),
		})
	}

	fixes := termfmt.TreeItem{Label: emoji.GetEmoji("fix") + " Fixes", Last: true}
	if len(p.Fixes) == 0 {
		fixes.Value = "none recorded yet"
	} else {
		fixes.Children = fixTreeItems(p.Fixes)
	}
	items = append(items, fixes)

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) FormatExtract(report *extract.Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, "Extraction Report")

	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")
	items := []termfmt.TreeItem{
		{Label: "Groups", Value: formatNumber(len(report.Rows))},
		{Label: "Known", Value: formatNumber(report.KnownCount)},
		{Label: "New", Value: formatNumber(report.NewCount), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")

	if len(report.Rows) == 0 {
		b.WriteString("No recurring errors in the scanned window.\n")
		return []byte(b.String()), nil
	}

	for _, row := range report.Rows {
		f.writeExtractRow(&b, &row)
	}

	if len(report.Candidates) > 0 {
		f.writeCandidates(&b, report.Candidates)
	}

	return []byte(b.String()), nil
}

// writeExtractRow writes one recurring-error group with its outcome
func (f *terminalFormatter) writeExtractRow(b *strings.Builder, row *extract.RowResult) {
	symbol := emoji.GetEmoji(row.Status)
	fmt.Fprintf(b, "%s %-5s %4d×  %s\n", symbol, row.Status, row.Group.Count, truncateMessage(row.Group.Message, 80))

	switch {
	case row.Matched != nil:
		fmt.Fprintf(b, "   └─ %s (score %s)\n", row.Matched.ID, formatScore(row.Score))
	case row.Candidate != nil:
		detail := fmt.Sprintf("candidate %s, severity %s", row.Candidate.ID, row.Candidate.Severity)
		if row.Score > 0 {
			detail += fmt.Sprintf(", best existing score %s", formatScore(row.Score))
		}
		fmt.Fprintf(b, "   └─ %s\n", detail)
	}
}

// writeCandidates writes full detail for synthesized pattern candidates
func (f *terminalFormatter) writeCandidates(b *strings.Builder, candidates []*playbook.Pattern) {
	fmt.Fprintf(b, "\n%s New Pattern Candidates\n", emoji.GetEmoji("new"))

	for i, c := range candidates {
		fmt.Fprintf(b, "%d. %s\n", i+1, c.ID)
		items := []termfmt.TreeItem{
			{Label: "Title", Value: c.Title},
			{Label: "Category", Value: c.Category},
			{Label: "Severity", Value: fmt.Sprintf("%s %s", severitySymbol(c.Severity), c.Severity)},
			{Label: "Fingerprint", Value: c.Fingerprint},
			{Label: "Matcher", Value: c.Matcher, Last: true},
		}
		b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
	}
	b.WriteString("Apply with 'errbook extract --apply' or edit the playbook by hand.\n")
}

func (f *terminalFormatter) FormatPatterns(patterns []*playbook.Pattern) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Playbook (%d patterns)\n", emoji.GetEmoji("playbook"), len(patterns))

	if len(patterns) == 0 {
		b.WriteString("No patterns recorded yet. Run 'errbook extract' or 'errbook patterns add'.\n")
		return []byte(b.String()), nil
	}

	items := make([]termfmt.TreeItem, 0, len(patterns))
	for i, p := range patterns {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", severitySymbol(p.Severity), p.ID),
			Value: fmt.Sprintf("%s (%s, trust %.0f%%)", p.Title, p.Category, p.TrustScore()*100),
			Last:  i == len(patterns)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")

	return []byte(b.String()), nil
}

func (f *terminalFormatter) FormatPattern(p *playbook.Pattern) ([]byte, error) {
	var b strings.Builder

	symbol := termfmt.GetEmoji("pattern", f.opts)
	fmt.Fprintf(&b, "%s %s\n", symbol, p.ID)

	items := []termfmt.TreeItem{
		{Label: "Title", Value: p.Title},
		{Label: "Category", Value: p.Category},
		{Label: "Severity", Value: fmt.Sprintf("%s %s", severitySymbol(p.Severity), p.Severity)},
	}

	if p.Fingerprint != "" {
		items = append(items, termfmt.TreeItem{Label: "Fingerprint", Value: p.Fingerprint})
	}
	if p.Matcher != "" {
		items = append(items, termfmt.TreeItem{Label: "Matcher", Value: p.Matcher})
	}

	items = append(items, termfmt.TreeItem{
		Label: "Trust",
		Value: fmt.Sprintf("%s %.0f%% (%d helpful, %d harmful)",
			termfmt.CreateConfidenceBar(p.TrustScore(), f.opts), p.TrustScore()*100,
			p.Feedback.Helpful, p.Feedback.Harmful),
	})

	if len(p.Symptoms) > 0 {
		items = append(items, termfmt.TreeItem{
			Label:    emoji.GetEmoji("symptom") + " Symptoms",
			Children: stringTreeItems(p.Symptoms),
		})
	}
	if len(p.RootCauses) > 0 {
		items = append(items, termfmt.TreeItem{
			Label:    emoji.GetEmoji("cause") + " Root Causes",
			Children: stringTreeItems(p.RootCauses),
		})
	}

	fixes := termfmt.TreeItem{Label: emoji.GetEmoji("fix") + " Fixes", Last: true}
	if len(p.Fixes) == 0 {
		fixes.Value = "none recorded yet"
	} else {
		fixes.Children = fixTreeItems(p.Fixes)
	}
	items = append(items, fixes)

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")

	return []byte(b.String()), nil
}

func (f *terminalFormatter) FormatStats(stats *Stats) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, "Playbook Statistics")

	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Playbook\n")
	items := []termfmt.TreeItem{
		{Label: "Path", Value: stats.PlaybookPath},
		{Label: "Patterns", Value: formatNumber(stats.PatternCount)},
		{Label: "Fixes Recorded", Value: formatNumber(stats.FixCount)},
		{
			Label: "Feedback",
			Value: fmt.Sprintf("%d helpful / %d harmful", stats.HelpfulTotal, stats.HarmfulTotal),
			Last:  true,
		},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")

	if len(stats.ByCategory) > 0 {
		b.WriteString("By Category\n")
		b.WriteString(termfmt.TreeViewWithOptions(countTreeItems(stats.ByCategory), f.opts) + "\n\n")
	}
	if len(stats.BySeverity) > 0 {
		b.WriteString("By Severity\n")
		b.WriteString(termfmt.TreeViewWithOptions(countTreeItems(stats.BySeverity), f.opts) + "\n\n")
	}

	fmt.Fprintf(&b, "%s Similarity Index\n", emoji.GetEmoji("index"))
	indexItems := []termfmt.TreeItem{
		{Label: "Dir", Value: stats.IndexDir},
		{Label: "State", Value: stats.IndexState},
		{Label: "Indexed", Value: formatNumber(stats.IndexedCount), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(indexItems, f.opts) + "\n")

	if len(stats.MissingFromIndex) > 0 {
		warn := termfmt.GetEmoji("warning", f.opts)
		fmt.Fprintf(&b, "\n%s %d patterns not indexed yet, run 'errbook similar --rebuild'\n",
			warn, len(stats.MissingFromIndex))
	}

	if stats.ConfigFile != "" {
		fmt.Fprintf(&b, "\nConfig: %s\n", stats.ConfigFile)
	}

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder, header string) {
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}
