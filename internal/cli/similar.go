package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/formatter"
	"github.com/opskit/errbook/internal/logger"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
	"github.com/opskit/errbook/internal/vectorstore"
)

var (
	similarPlaybook string
	similarTop      int
	similarRebuild  bool
)

func newSimilarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar [error message]",
		Short: "Find related patterns with the similarity index",
		Long: `Find playbook patterns similar to an error message using TF-IDF
cosine similarity over each pattern's full record.

Unlike 'errbook match', this catches patterns that share vocabulary with
the message without a regex or keyword hit. The index is persisted on
disk and must be rebuilt after the playbook changes.

If no message is given, reads it from stdin.

Examples:
  errbook similar "too many open files in pod api-7f9d"
  errbook similar --rebuild
  errbook similar --rebuild "connection reset by peer"`,
		Args: cobra.ArbitraryArgs,
		RunE: runSimilar,
	}

	cmd.Flags().StringVarP(&similarPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().IntVarP(&similarTop, "top", "n", 5, "maximum results")
	cmd.Flags().BoolVar(&similarRebuild, "rebuild", false, "rebuild the index from the playbook before querying")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if !cmd.Flag("top").Changed {
		similarTop = cfg.Match.DefaultLimit
	}

	// A rebuild needs the playbook; plain queries treat a missing file
	// as zero matches
	patterns, err := loadPlaybookPatterns(similarPlaybook)
	playbookMissing := false
	if err != nil {
		var unavail *playbook.UnavailableError
		if !errors.As(err, &unavail) || !errors.Is(err, fs.ErrNotExist) || similarRebuild {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		playbookMissing = true
		patterns = nil
	}

	index := openIndex()

	if similarRebuild {
		log := GetLogger("similar")
		start := time.Now()
		if err := index.Rebuild(patterns); err != nil {
			return fmt.Errorf("failed to rebuild index: %w", err)
		}
		log.InfoWithFields("index rebuilt", logger.Count(len(patterns)), logger.Duration(time.Since(start)))

		// Rebuild without a query argument is a complete run
		if len(args) == 0 {
			fmt.Printf("%s Indexed %d patterns in %s\n", emoji.GetEmoji("index"), len(patterns), cfg.Index.Dir)
			return nil
		}
	}

	query, err := queryFromArgsOrStdin(args)
	if err != nil {
		return err
	}

	results, err := index.Query(query, similarTop)
	if err != nil {
		return err
	}
	if index.State() == vectorstore.StateEmpty && !playbookMissing {
		return fmt.Errorf("similarity index is empty. Run 'errbook similar --rebuild' to build it")
	}

	byID := make(map[string]*playbook.Pattern, len(patterns))
	for _, p := range patterns {
		byID[p.ID] = p
	}

	report := &formatter.MatchReport{Query: query}
	for _, r := range results {
		p, ok := byID[r.PatternID]
		if !ok {
			// Indexed pattern no longer in the playbook; skip until rebuild
			continue
		}
		report.Results = append(report.Results, &match.Result{
			Pattern:   p,
			Score:     r.Score * 100,
			MatchedBy: match.MatchedBySimilarity,
		})
	}

	return writeMatchReport(report)
}
