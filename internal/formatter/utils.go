package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/playbook"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// formatScore renders a 0-100 score without noise on round values
func formatScore(score float64) string {
	if score == float64(int(score)) {
		return fmt.Sprintf("%d", int(score))
	}
	return fmt.Sprintf("%.1f", score)
}

// severitySymbol returns the emoji for a pattern severity
func severitySymbol(severity playbook.Severity) string {
	switch severity {
	case playbook.SeverityHigh:
		return emoji.GetEmoji("high")
	case playbook.SeverityMedium:
		return emoji.GetEmoji("medium")
	case playbook.SeverityLow:
		return emoji.GetEmoji("low")
	default:
		return emoji.GetEmoji("info")
	}
}

// truncateMessage trims a message to fit one display line
func truncateMessage(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// stringTreeItems builds leaf tree items from a string list
func stringTreeItems(values []string) []termfmt.TreeItem {
	items := make([]termfmt.TreeItem, 0, len(values))
	for i, v := range values {
		items = append(items, termfmt.TreeItem{
			Label: v,
			Last:  i == len(values)-1,
		})
	}
	return items
}

// fixTreeItems builds numbered tree items from fix steps
func fixTreeItems(fixes []playbook.Fix) []termfmt.TreeItem {
	items := make([]termfmt.TreeItem, 0, len(fixes))
	for i, fix := range fixes {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%d. %s", i+1, fix.Step),
			Value: fix.Command,
			Last:  i == len(fixes)-1,
		})
	}
	return items
}

// countTreeItems builds tree items from a count map in key order
func countTreeItems(counts map[string]int) []termfmt.TreeItem {
	keys := sortedKeys(counts)
	items := make([]termfmt.TreeItem, 0, len(keys))
	for i, key := range keys {
		items = append(items, termfmt.TreeItem{
			Label: key,
			Value: formatNumber(counts[key]),
			Last:  i == len(keys)-1,
		})
	}
	return items
}

// sortedKeys returns map keys in ascending order for stable output
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
