package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/extract"
	"github.com/opskit/errbook/internal/logger"
	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/playbook"
)

var (
	extractPlaybook   string
	extractFormat     string
	extractWindow     int
	extractMinCount   int
	extractMaxRows    int
	extractApply      bool
	extractOutputFile string
)

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Mine recurring errors from logs into pattern candidates",
		Long: `Scan log files for recurring errors and check each one against the
playbook.

Error-level entries inside the lookback window are grouped by
normalized fingerprint. Groups a known pattern covers are reported as
known; the rest become new pattern candidates with a synthesized
matcher. Candidates are only suggestions until applied.

With no file arguments, scans the log paths from configuration.

Examples:
  errbook extract /var/log/app.log
  errbook extract --window 14 --min-count 5 api.log worker.log
  errbook extract --apply /var/log/app.log`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtract,
	}

	cmd.Flags().StringVarP(&extractPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().StringVarP(&extractFormat, "format", "f", "auto", "log format (auto, json, logfmt, text)")
	cmd.Flags().IntVar(&extractWindow, "window", 7, "lookback window in days")
	cmd.Flags().IntVar(&extractMinCount, "min-count", 3, "minimum occurrences for a recurring group")
	cmd.Flags().IntVar(&extractMaxRows, "max-rows", logstore.MaxGroups, "maximum groups per run")
	cmd.Flags().BoolVar(&extractApply, "apply", false, "append new candidates to the playbook and reindex")
	cmd.Flags().StringVar(&extractOutputFile, "output-file", "", "save report to file instead of stdout")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	// Use config values if flags weren't explicitly set
	if !cmd.Flag("format").Changed {
		extractFormat = cfg.Logs.Format
	}
	if !cmd.Flag("window").Changed {
		extractWindow = cfg.Extract.WindowDays
	}
	if !cmd.Flag("min-count").Changed {
		extractMinCount = cfg.Extract.MinCount
	}
	if !cmd.Flag("max-rows").Changed {
		extractMaxRows = cfg.Extract.MaxRows
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Logs.Paths
	}
	if len(paths) == 0 {
		return fmt.Errorf("no log files given. Pass files as arguments or set logs.paths in the config")
	}

	log := GetLogger("extract")
	start := time.Now()

	store := logstore.NewFileStore(paths, extractFormat)
	since := time.Now().AddDate(0, 0, -extractWindow)
	// A missing log file yields an empty report, not a failure
	groups, err := store.QueryRecurringErrors(since, extractMinCount)
	if err != nil {
		var unavail *logstore.UnavailableError
		if !errors.As(err, &unavail) || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to scan logs: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		groups = nil
	}
	log.InfoWithFields("scanned logs", logger.F("files", len(paths)), logger.Count(len(groups)), logger.Duration(time.Since(start)))

	playbookStore := openPlaybook(extractPlaybook)
	patterns, err := loadMatchablePatterns(playbookStore)
	if err != nil {
		return err
	}

	extractor := extract.New(extract.Options{
		KnownThreshold:  cfg.Match.KnownThreshold,
		MinKeywordScore: cfg.Match.MinKeywordScore,
		MaxRows:         extractMaxRows,
		HighCount:       cfg.Extract.HighCount,
		MediumCount:     cfg.Extract.MediumCount,
	})
	report := extractor.Run(groups, patterns)
	log.InfoWithFields("classified groups", logger.F("known", report.KnownCount), logger.F("new", report.NewCount))

	if extractApply && len(report.Candidates) > 0 {
		if err := applyCandidates(playbookStore, report.Candidates); err != nil {
			return err
		}
	}

	f, err := newFormatter()
	if err != nil {
		return err
	}
	output, err := f.FormatExtract(report)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return handleOutputDestination(output)
}

// loadMatchablePatterns loads the playbook, treating a missing file as
// an empty pattern set so a first extraction run can bootstrap it.
func loadMatchablePatterns(store *playbook.Store) ([]*playbook.Pattern, error) {
	patterns, err := store.Load()
	if err != nil {
		var unavail *playbook.UnavailableError
		if errors.As(err, &unavail) && errors.Is(err, fs.ErrNotExist) {
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "No playbook at %s yet, treating every group as new\n", store.Path())
			}
			return nil, nil
		}
		return nil, err
	}
	return patterns, nil
}

// applyCandidates appends candidates to the playbook and rebuilds the
// similarity index so queries see them.
func applyCandidates(store *playbook.Store, candidates []*playbook.Pattern) error {
	if err := store.Append(candidates...); err != nil {
		return fmt.Errorf("failed to apply candidates: %w", err)
	}
	if err := rebuildIndex(store); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s Applied %d new patterns to %s\n", emoji.GetEmoji("extract"), len(candidates), store.Path())
	return nil
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(output []byte) error {
	if extractOutputFile == "" {
		fmt.Print(string(output))
		return nil
	}

	cleanPath := filepath.Clean(extractOutputFile)
	if err := os.WriteFile(cleanPath, output, 0o600); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", cleanPath)
	}
	return nil
}
