package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opskit/errbook/internal/formatter"
	"github.com/opskit/errbook/internal/playbook"
	"github.com/opskit/errbook/internal/vectorstore"
)

// openPlaybook returns a store for the given path, falling back to the
// configured playbook when the flag was not set.
func openPlaybook(flagPath string) *playbook.Store {
	path := flagPath
	if path == "" {
		path = GetGlobalConfig().Playbook.Path
	}
	return playbook.NewStore(path)
}

// loadPlaybookPatterns loads all patterns from the selected playbook.
func loadPlaybookPatterns(flagPath string) ([]*playbook.Pattern, error) {
	store := openPlaybook(flagPath)
	patterns, err := store.Load()
	if err != nil {
		return nil, err
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Loaded %d patterns from %s\n", len(patterns), store.Path())
	}
	return patterns, nil
}

// openIndex returns the similarity index at the configured directory.
func openIndex() *vectorstore.Index {
	return vectorstore.NewIndex(vectorstore.NewDiskStore(GetGlobalConfig().Index.Dir))
}

// rebuildIndex recomputes the similarity index from the playbook's
// current patterns.
func rebuildIndex(store *playbook.Store) error {
	patterns, err := store.Load()
	if err != nil {
		return err
	}
	if err := openIndex().Rebuild(patterns); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Reindexed %d patterns\n", len(patterns))
	}
	return nil
}

// newFormatter builds the formatter for the global output format.
func newFormatter() (formatter.Formatter, error) {
	return formatter.New(getOutputFormat(), !noColor)
}

// queryFromArgsOrStdin joins args into one query string, or reads the
// whole of stdin when no args were given.
func queryFromArgsOrStdin(args []string) (string, error) {
	if len(args) > 0 {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return "", fmt.Errorf("empty error message")
		}
		return query, nil
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Reading error message from stdin...\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("empty error message")
	}
	return query, nil
}
