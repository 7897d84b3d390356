package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/go-logparser"

	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

var (
	watchPlaybook string
	watchFormat   string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a log file and recognize new errors in real time",
		Long: `Monitor a log file and check each new error-level entry against the
playbook as it is written.

Recognized errors print their pattern id and first fix; unrecognized
ones are flagged so an 'errbook extract' run can turn them into
candidates. Press Ctrl+C to stop watching.

Examples:
  errbook watch /var/log/app.log
  errbook watch --format json app.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().StringVarP(&watchFormat, "format", "f", "auto", "log format (auto, json, logfmt, text)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	patterns, err := loadPlaybookPatterns(watchPlaybook)
	if err != nil {
		return err
	}

	cfg := GetGlobalConfig()
	session := &watchSession{
		patterns:  patterns,
		matcher:   &match.Matcher{MinScore: cfg.Match.MinKeywordScore},
		threshold: cfg.Match.KnownThreshold,
	}

	watcher, file, cleanup, err := setupFileWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanup()

	return session.run(watcher, file)
}

// watchSession holds the matcher state threaded through the watch loop.
type watchSession struct {
	patterns  []*playbook.Pattern
	matcher   *match.Matcher
	threshold float64
	parser    logparser.Parser
}

// run is the main watch loop with signal handling.
func (w *watchSession) run(watcher *fsnotify.Watcher, file *os.File) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := w.processNewLines(file); err != nil && isVerbose() {
					fmt.Fprintf(os.Stderr, "Error processing new lines: %v\n", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// processNewLines reads appended lines and matches error entries.
func (w *watchSession) processNewLines(file *os.File) error {
	scanner := bufio.NewScanner(file)

	var newLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			newLines = append(newLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	if len(newLines) == 0 {
		return nil
	}

	if w.parser == nil {
		p, err := newLogParser(watchFormat)
		if err != nil {
			return err
		}
		w.parser = p
	}

	entries, err := w.parser.ParseString(strings.Join(newLines, "\n"))
	if err != nil {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Failed to parse lines: %v\n", err)
		}
		return nil
	}

	for i := range entries {
		w.reportEntry(&entries[i])
	}
	return nil
}

// reportEntry prints the playbook verdict for one error-level entry.
func (w *watchSession) reportEntry(entry *logparser.LogEntry) {
	if !logstore.IsErrorLevel(entry.Level) {
		return
	}

	timestamp := entry.Timestamp.Format("15:04:05")
	results := w.matcher.FindMatches(w.patterns, entry.Message, 1)

	if len(results) > 0 && results[0].Score > w.threshold {
		p := results[0].Pattern
		fmt.Printf("[%s] %s %s %s (score %.0f): %s\n",
			timestamp, GetEmoji("known"), GetSeverityEmoji(p.Severity), p.ID, results[0].Score, entry.Message)
		if len(p.Fixes) > 0 {
			fmt.Printf("         └─ fix: %s\n", p.Fixes[0].Step)
		}
		return
	}

	fmt.Printf("[%s] %s unrecognized: %s\n", timestamp, GetEmoji("new"), entry.Message)
}

// newLogParser builds a parser for the given format.
func newLogParser(format string) (logparser.Parser, error) {
	switch format {
	case "", "auto":
		return logparser.New(), nil
	case "json":
		return logparser.NewWithFormat(logparser.FormatJSON), nil
	case "logfmt":
		return logparser.NewWithFormat(logparser.FormatLogfmt), nil
	case "text":
		return logparser.NewWithFormat(logparser.FormatText), nil
	default:
		return nil, fmt.Errorf("unknown log format %q. Available formats: auto, json, logfmt, text", format)
	}
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// cleanupFile safely closes file with error logging
func cleanupFile(file *os.File) {
	if err := file.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// openWatchFile opens the file and seeks to its end so only new
// entries are reported.
func openWatchFile(filename string) (*os.File, error) {
	// #nosec G304 - path is validated by caller
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		cleanupFile(file)
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	return file, nil
}

// setupFileWatcher creates and configures file watcher
func setupFileWatcher(filename string) (*fsnotify.Watcher, *os.File, func(), error) {
	if err := validateWatchFilePath(filename); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid file path: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching file: %s\n", filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return nil, nil, nil, err
	}

	file, err := openWatchFile(filename)
	if err != nil {
		cleanupWatcher(watcher)
		return nil, nil, nil, err
	}

	cleanup := func() {
		cleanupWatcher(watcher)
		cleanupFile(file)
	}

	return watcher, file, cleanup, nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
