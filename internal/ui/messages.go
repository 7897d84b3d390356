package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/opskit/errbook/internal/playbook"
)

// Common message types shared across browser models
type playbookChangedMsg struct{}

type playbookReloadedMsg struct {
	patterns []*playbook.Pattern
}

type reloadErrorMsg struct {
	err error
}

type watchErrorMsg struct {
	err error
}

// CreateReloadCommand creates a tea command that re-reads the playbook
func CreateReloadCommand(store *playbook.Store) tea.Cmd {
	return func() tea.Msg {
		patterns, err := store.Load()
		if err != nil {
			return reloadErrorMsg{err: err}
		}
		return playbookReloadedMsg{patterns: patterns}
	}
}

// waitForPlaybookChange blocks until the playbook file is written.
// Editors replace the file on save rather than writing in place, so
// the watcher covers the parent directory and events are filtered by
// file name.
func waitForPlaybookChange(watcher *fsnotify.Watcher, path string) tea.Cmd {
	base := filepath.Base(path)
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return playbookChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrorMsg{err: err}
			}
		}
	}
}
