package logstore

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yildizm/go-logparser"

	"github.com/opskit/errbook/internal/fingerprint"
)

// errorLevels are the log levels that count as recurring errors.
var errorLevels = map[string]bool{
	"ERROR":    true,
	"ERR":      true,
	"FATAL":    true,
	"PANIC":    true,
	"CRITICAL": true,
}

// IsErrorLevel reports whether a parsed log level counts as an error.
func IsErrorLevel(level string) bool {
	return errorLevels[strings.ToUpper(level)]
}

// FileStore implements Store over one or more local log files parsed
// with go-logparser.
type FileStore struct {
	paths  []string
	format string
}

// NewFileStore returns a store over the given log files. format is
// one of "auto", "json", "logfmt", or "text".
func NewFileStore(paths []string, format string) *FileStore {
	return &FileStore{paths: paths, format: format}
}

// QueryRecurringErrors parses every configured file, keeps error-level
// entries whose timestamp falls at or after since, and groups them by
// fingerprint. Entries without a parseable timestamp are kept; a
// missing timestamp must not hide a recurring error. Rows come back
// ordered by count descending (ties by message), capped at MaxGroups.
func (s *FileStore) QueryRecurringErrors(since time.Time, minCount int) ([]RecurringGroup, error) {
	if len(s.paths) == 0 {
		return nil, fmt.Errorf("no log files configured")
	}
	if minCount <= 0 {
		minCount = 1
	}

	groups := make(map[string]*RecurringGroup)
	for _, path := range s.paths {
		parser, err := s.newParser()
		if err != nil {
			return nil, err
		}

		// #nosec G304 - paths come from config or explicit flags
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &UnavailableError{Path: path, Err: err}
		}

		entries, err := parser.ParseString(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for i := range entries {
			s.collect(groups, &entries[i], since)
		}
	}

	rows := make([]RecurringGroup, 0, len(groups))
	for _, g := range groups {
		if g.Count >= minCount {
			rows = append(rows, *g)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Message < rows[j].Message
	})
	if len(rows) > MaxGroups {
		rows = rows[:MaxGroups]
	}
	return rows, nil
}

func (s *FileStore) collect(groups map[string]*RecurringGroup, entry *logparser.LogEntry, since time.Time) {
	if !IsErrorLevel(entry.Level) {
		return
	}
	if !entry.Timestamp.IsZero() && entry.Timestamp.Before(since) {
		return
	}

	key := fingerprint.Normalize(entry.Message)
	g, ok := groups[key]
	if !ok {
		groups[key] = &RecurringGroup{
			Message:     entry.Message,
			Fingerprint: key,
			Count:       1,
			Level:       strings.ToUpper(entry.Level),
			FirstSeen:   entry.Timestamp,
			LastSeen:    entry.Timestamp,
		}
		return
	}

	g.Count++
	if !entry.Timestamp.IsZero() {
		if g.FirstSeen.IsZero() || entry.Timestamp.Before(g.FirstSeen) {
			g.FirstSeen = entry.Timestamp
		}
		if entry.Timestamp.After(g.LastSeen) {
			g.LastSeen = entry.Timestamp
		}
	}
}

func (s *FileStore) newParser() (logparser.Parser, error) {
	switch s.format {
	case "", "auto":
		return logparser.New(), nil
	case "json":
		return logparser.NewWithFormat(logparser.FormatJSON), nil
	case "logfmt":
		return logparser.NewWithFormat(logparser.FormatLogfmt), nil
	case "text":
		return logparser.NewWithFormat(logparser.FormatText), nil
	default:
		return nil, fmt.Errorf("unknown log format %q. Available formats: auto, json, logfmt, text", s.format)
	}
}
