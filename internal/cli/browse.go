package cli

import (
	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/ui"
)

var browsePlaybook string

func newBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the playbook in an interactive terminal UI",
		Long: `Open the playbook in an interactive terminal UI.

Navigate patterns with the arrow keys, filter with /, and press enter
to see a pattern's symptoms, root causes, and fixes. The view reloads
automatically when the playbook file changes on disk.

Examples:
  errbook browse
  errbook browse --playbook ./playbook.yaml`,
		RunE: runBrowse,
	}

	cmd.Flags().StringVarP(&browsePlaybook, "playbook", "p", "", "playbook file (default from config)")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	store := openPlaybook(browsePlaybook)
	patterns, err := store.Load()
	if err != nil {
		return err
	}

	return ui.Run(store, patterns)
}
