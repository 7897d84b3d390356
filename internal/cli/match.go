package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/formatter"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

var (
	matchPlaybook string
	matchLimit    int
	matchMinScore float64
)

func newMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [error message]",
		Short: "Match an error message against the playbook",
		Long: `Match an error message against the known patterns in the playbook.

A pattern's matcher regex is checked first; a regex hit scores 100.
Patterns without a matching regex are scored by keyword overlap between
the message and the pattern's title and symptoms.

If no message is given, reads it from stdin.

Examples:
  errbook match "connection refused to postgres on 5432"
  kubectl logs api-7f9d | tail -1 | errbook match
  errbook match --limit 10 "disk full on /var/lib/docker"`,
		Args: cobra.ArbitraryArgs,
		RunE: runMatch,
	}

	cmd.Flags().StringVarP(&matchPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().IntVarP(&matchLimit, "limit", "n", 5, "maximum results")
	cmd.Flags().Float64Var(&matchMinScore, "min-score", match.DefaultMinScore, "drop keyword matches at or below this score")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	// Use config values if flags weren't explicitly set
	if !cmd.Flag("limit").Changed {
		matchLimit = cfg.Match.DefaultLimit
	}
	if !cmd.Flag("min-score").Changed {
		matchMinScore = cfg.Match.MinKeywordScore
	}

	query, err := queryFromArgsOrStdin(args)
	if err != nil {
		return err
	}

	// A missing playbook matches nothing; other load failures are fatal
	patterns, err := loadPlaybookPatterns(matchPlaybook)
	if err != nil {
		var unavail *playbook.UnavailableError
		if !errors.As(err, &unavail) || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		patterns = nil
	}

	matcher := &match.Matcher{MinScore: matchMinScore}
	results := matcher.FindMatches(patterns, query, matchLimit)

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Scored %d patterns, kept %d\n", len(patterns), len(results))
	}

	report := &formatter.MatchReport{
		Query:   query,
		Results: make([]*match.Result, len(results)),
	}
	for i := range results {
		report.Results[i] = &results[i]
	}

	return writeMatchReport(report)
}

// writeMatchReport formats a match report and prints it to stdout.
func writeMatchReport(report *formatter.MatchReport) error {
	f, err := newFormatter()
	if err != nil {
		return err
	}

	output, err := f.FormatMatches(report)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Print(string(output))
	return nil
}
