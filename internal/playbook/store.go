package playbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// NotFoundError reports a pattern id that does not exist in the playbook.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern %q not found in playbook", e.ID)
}

// UnavailableError reports a playbook file that could not be read.
// It always carries the path that was attempted.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("playbook unavailable at %s: %v", e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Store reads and writes a playbook YAML file. It holds no state
// beyond the path; every operation works on the file's current content.
type Store struct {
	path string
}

// NewStore returns a store for the playbook file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the playbook file path this store operates on.
func (s *Store) Path() string {
	return s.path
}

// document is the on-disk shape: a top-level "patterns" list.
type document struct {
	Patterns []*Pattern `yaml:"patterns"`
}

// Load reads all patterns from the playbook file. A missing or
// unreadable file yields an UnavailableError naming the attempted path.
func (s *Store) Load() ([]*Pattern, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, fmt.Errorf("empty playbook path")
	}

	// #nosec G304 - path comes from config or an explicit flag
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &UnavailableError{Path: s.path, Err: err}
	}

	// Preferred form: a document with a top-level "patterns" list.
	var doc document
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Patterns != nil {
		return doc.Patterns, nil
	}

	// Also accept a bare list of patterns.
	var patterns []*Pattern
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("failed to parse playbook %s: %w", s.path, err)
	}
	return patterns, nil
}

// Save writes the full pattern list back to the playbook file,
// replacing its previous content.
func (s *Store) Save(patterns []*Pattern) error {
	if strings.TrimSpace(s.path) == "" {
		return fmt.Errorf("empty playbook path")
	}

	data, err := yaml.Marshal(document{Patterns: patterns})
	if err != nil {
		return fmt.Errorf("failed to encode playbook: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create playbook directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write playbook %s: %w", s.path, err)
	}
	return nil
}

// Append validates and adds new patterns to the playbook. A missing
// playbook file is treated as empty so a first pattern can create it.
// The merged set is validated before anything is written, so a
// duplicate id or schema violation leaves the file untouched.
func (s *Store) Append(patterns ...*Pattern) error {
	existing, err := s.Load()
	if err != nil {
		var unavail *UnavailableError
		if !errors.As(err, &unavail) || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		existing = nil
	}

	merged := make([]*Pattern, 0, len(existing)+len(patterns))
	merged = append(merged, existing...)
	merged = append(merged, patterns...)

	if err := Validate(merged); err != nil {
		return err
	}
	return s.Save(merged)
}

// Get returns the pattern with the given id.
func (s *Store) Get(id string) (*Pattern, error) {
	patterns, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, p := range patterns {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// RecordFeedback increments the helpful or harmful counter on the
// pattern with the given id and persists the change. An unknown id
// leaves the playbook unmodified.
func (s *Store) RecordFeedback(id string, helpful bool) (*Pattern, error) {
	patterns, err := s.Load()
	if err != nil {
		return nil, err
	}

	var target *Pattern
	for _, p := range patterns {
		if p.ID == id {
			target = p
			break
		}
	}
	if target == nil {
		return nil, &NotFoundError{ID: id}
	}

	if helpful {
		target.Feedback.Helpful++
	} else {
		target.Feedback.Harmful++
	}

	if err := s.Save(patterns); err != nil {
		return nil, err
	}
	return target, nil
}
