package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
	"github.com/opskit/errbook/internal/prompt"
)

var (
	promptPlaybook string
	promptQuery    string
	promptLogs     bool
)

func newPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt [pattern-id]",
		Short: "Render an LLM investigation prompt",
		Long: `Render an investigation prompt for a playbook pattern, or a triage
prompt for an error message the playbook does not cover.

The prompt is printed to stdout for pasting into the assistant of your
choice. Nothing is sent anywhere.

Examples:
  errbook prompt db-conn-refused
  errbook prompt db-conn-refused --logs
  errbook prompt --query "dial tcp 10.0.3.4:6379: i/o timeout"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPrompt,
	}

	cmd.Flags().StringVarP(&promptPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().StringVarP(&promptQuery, "query", "q", "", "error message to triage instead of a pattern id")
	cmd.Flags().BoolVar(&promptLogs, "logs", false, "include recent occurrences from the configured log files")

	return cmd
}

func runPrompt(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 1 && promptQuery != "":
		return fmt.Errorf("pass either a pattern id or --query, not both")
	case len(args) == 1:
		return runInvestigationPrompt(args[0])
	case promptQuery != "":
		return runTriagePrompt(promptQuery)
	default:
		return fmt.Errorf("pass a pattern id or --query")
	}
}

func runInvestigationPrompt(id string) error {
	store := openPlaybook(promptPlaybook)
	p, err := store.Get(id)
	if err != nil {
		return err
	}

	builder := prompt.Investigation().WithPattern(p)
	if promptLogs {
		hits, err := collectRecentHits(p)
		if err != nil {
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Warning: failed to collect recent hits: %v\n", err)
			}
		} else {
			builder.WithRecentHits(hits)
		}
	}

	fmt.Println(builder.Build().String())
	return nil
}

func runTriagePrompt(query string) error {
	// Triage works without a playbook, so a missing file just means no
	// near-match context
	patterns, err := loadPlaybookPatterns(promptPlaybook)
	if err != nil {
		var unavail *playbook.UnavailableError
		if !errors.As(err, &unavail) || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		patterns = nil
	}

	matcher := &match.Matcher{MinScore: 0}
	results := matcher.FindMatches(patterns, query, 3)

	near := make([]*match.Result, len(results))
	for i := range results {
		near[i] = &results[i]
	}

	p := prompt.Triage().WithQuery(query).WithNearMatches(near).Build()
	fmt.Println(p.String())
	return nil
}

// collectRecentHits scans the configured log files for recurring
// groups the pattern recognizes.
func collectRecentHits(p *playbook.Pattern) ([]logstore.RecurringGroup, error) {
	cfg := GetGlobalConfig()
	if len(cfg.Logs.Paths) == 0 {
		return nil, fmt.Errorf("no log files configured")
	}

	store := logstore.NewFileStore(cfg.Logs.Paths, cfg.Logs.Format)
	since := time.Now().AddDate(0, 0, -cfg.Extract.WindowDays)
	groups, err := store.QueryRecurringErrors(since, 1)
	if err != nil {
		return nil, err
	}

	matcher := &match.Matcher{MinScore: cfg.Match.MinKeywordScore}
	single := []*playbook.Pattern{p}

	var hits []logstore.RecurringGroup
	for _, g := range groups {
		best := matcher.FindMatches(single, g.Message, 1)
		if len(best) > 0 && best[0].Score > cfg.Match.KnownThreshold {
			hits = append(hits, g)
		}
	}
	return hits, nil
}
