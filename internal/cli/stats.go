package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/config"
	"github.com/opskit/errbook/internal/formatter"
	"github.com/opskit/errbook/internal/playbook"
	"github.com/opskit/errbook/internal/vectorstore"
)

var statsPlaybook string

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show playbook and index statistics",
		Long: `Show pattern counts by category and severity, accumulated feedback,
and the state of the similarity index.

Patterns missing from the index are listed so a stale index is visible
before it produces misleading similarity results.`,
		RunE: runStats,
	}

	cmd.Flags().StringVarP(&statsPlaybook, "playbook", "p", "", "playbook file (default from config)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	store := openPlaybook(statsPlaybook)
	patterns, err := store.Load()
	if err != nil {
		return err
	}

	stats := &formatter.Stats{
		PlaybookPath: store.Path(),
		PatternCount: len(patterns),
		ByCategory:   make(map[string]int),
		BySeverity:   make(map[string]int),
		IndexDir:     cfg.Index.Dir,
	}

	for _, p := range patterns {
		stats.FixCount += len(p.Fixes)
		stats.HelpfulTotal += p.Feedback.Helpful
		stats.HarmfulTotal += p.Feedback.Harmful

		category := p.Category
		if category == "" {
			category = "general"
		}
		stats.ByCategory[category]++
		stats.BySeverity[string(p.Severity)]++
	}

	index := openIndex()
	if err := collectIndexStats(index, stats, patterns); err != nil {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to read index: %v\n", err)
		}
		stats.IndexState = "unavailable"
	} else {
		if len(stats.MissingFromIndex) > 0 {
			// Vectors predate the playbook's current pattern set
			index.Invalidate()
		}
		stats.IndexState = index.State().String()
	}

	if cfgFile != "" {
		stats.ConfigFile = cfgFile
	} else if path, found := config.FindConfigFile(); found {
		stats.ConfigFile = path
	}

	f, err := newFormatter()
	if err != nil {
		return err
	}
	output, err := f.FormatStats(stats)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Print(string(output))
	return nil
}

// collectIndexStats fills in index size and which playbook patterns
// the index is missing.
func collectIndexStats(index *vectorstore.Index, stats *formatter.Stats, patterns []*playbook.Pattern) error {
	size, err := index.Size()
	if err != nil {
		return err
	}
	stats.IndexedCount = size

	ids, err := index.IDs()
	if err != nil {
		return err
	}
	indexed := make(map[string]bool, len(ids))
	for _, id := range ids {
		indexed[id] = true
	}

	for _, p := range patterns {
		if !indexed[p.ID] {
			stats.MissingFromIndex = append(stats.MissingFromIndex, p.ID)
		}
	}
	return nil
}
