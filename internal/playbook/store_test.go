package playbook

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func samplePatterns() []*Pattern {
	return []*Pattern{
		{
			ID:          "db-conn-refused",
			Title:       "Postgres connection refused",
			Category:    "database",
			Severity:    SeverityHigh,
			Fingerprint: "connection refused to <ip>:<port>",
			Matcher:     "connection refused",
			Symptoms:    []string{"dial tcp <ip>:<port>: connect: connection refused"},
			RootCauses:  []string{"postgres is down", "wrong port in config"},
			Fixes: []Fix{
				{Step: "check the database is running", Command: "pg_isready"},
				{Step: "verify the connection string"},
			},
			Feedback: Feedback{Helpful: 4, Harmful: 1},
		},
		{
			ID:       "disk-full",
			Title:    "No space left on device",
			Category: "filesystem",
			Severity: SeverityMedium,
			Symptoms: []string{"write /var/log: no space left on device"},
			Fixes:    []Fix{{Step: "rotate or prune logs"}},
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	store := NewStore(path)

	want := samplePatterns()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	store := NewStore(path)

	_, err := store.Load()
	if err == nil {
		t.Fatal("Load() on missing file should fail")
	}

	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("Load() error = %T, want *UnavailableError", err)
	}
	if unavail.Path != path {
		t.Errorf("UnavailableError.Path = %q, want %q", unavail.Path, path)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error message should name the attempted path, got %q", err.Error())
	}
}

func TestStoreLoadBareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	content := `- id: timeout
  title: Upstream timeout
  severity: low
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	patterns, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(patterns) != 1 || patterns[0].ID != "timeout" {
		t.Errorf("Load() = %+v, want one pattern with id timeout", patterns)
	}
}

func TestStoreGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	store := NewStore(path)
	if err := store.Save(samplePatterns()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	p, err := store.Get("disk-full")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if p.Title != "No space left on device" {
		t.Errorf("Get() returned wrong pattern: %+v", p)
	}

	_, err = store.Get("nope")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Get() error = %T, want *NotFoundError", err)
	}
	if notFound.ID != "nope" {
		t.Errorf("NotFoundError.ID = %q, want %q", notFound.ID, "nope")
	}
}

func TestRecordFeedback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	store := NewStore(path)
	if err := store.Save(samplePatterns()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	p, err := store.RecordFeedback("db-conn-refused", true)
	if err != nil {
		t.Fatalf("RecordFeedback() error: %v", err)
	}
	if p.Feedback.Helpful != 5 {
		t.Errorf("helpful = %d, want 5", p.Feedback.Helpful)
	}

	// The increment must survive a reload.
	reloaded, err := store.Get("db-conn-refused")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if reloaded.Feedback.Helpful != 5 || reloaded.Feedback.Harmful != 1 {
		t.Errorf("persisted feedback = %+v, want helpful 5 harmful 1", reloaded.Feedback)
	}

	if _, err := store.RecordFeedback("db-conn-refused", false); err != nil {
		t.Fatalf("RecordFeedback() error: %v", err)
	}
	reloaded, _ = store.Get("db-conn-refused")
	if reloaded.Feedback.Harmful != 2 {
		t.Errorf("harmful = %d, want 2", reloaded.Feedback.Harmful)
	}
}

func TestRecordFeedbackUnknownIDLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	store := NewStore(path)
	if err := store.Save(samplePatterns()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	_, err = store.RecordFeedback("unknown-id", true)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("RecordFeedback() error = %T, want *NotFoundError", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if string(before) != string(after) {
		t.Error("playbook file changed after failed feedback")
	}
}

func TestAppendCreatesMissingPlaybook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "playbook.yaml")
	store := NewStore(path)

	err := store.Append(&Pattern{ID: "first", Title: "First pattern", Severity: SeverityLow})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	patterns, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(patterns) != 1 || patterns[0].ID != "first" {
		t.Errorf("Load() = %+v, want the appended pattern", patterns)
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	store := NewStore(path)
	if err := store.Save(samplePatterns()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	err := store.Append(&Pattern{ID: "disk-full", Title: "Duplicate", Severity: SeverityLow})
	var violations Violations
	if !errors.As(err, &violations) {
		t.Fatalf("Append() error = %T, want Violations", err)
	}

	patterns, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(patterns) != 2 {
		t.Errorf("playbook has %d patterns after rejected append, want 2", len(patterns))
	}
}
