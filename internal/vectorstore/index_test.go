package vectorstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opskit/errbook/internal/playbook"
)

func indexPatterns() []*playbook.Pattern {
	return []*playbook.Pattern{
		{
			ID:         "net-refused",
			Title:      "Postgres connection refused",
			Category:   "database",
			Severity:   playbook.SeverityHigh,
			Symptoms:   []string{"dial tcp connection refused"},
			RootCauses: []string{"postgres is down"},
			Fixes:      []playbook.Fix{{Step: "restart postgres"}},
		},
		{
			ID:       "disk-full",
			Title:    "No space left on device",
			Category: "filesystem",
			Severity: playbook.SeverityMedium,
			Symptoms: []string{"write failed: no space left"},
		},
		{
			ID:       "oom-kill",
			Title:    "Container killed out of memory",
			Category: "memory",
			Severity: playbook.SeverityHigh,
			Symptoms: []string{"oom killer invoked"},
		},
	}
}

func TestIndexRebuildAndQuery(t *testing.T) {
	ix := NewIndex(NewDiskStore(t.TempDir()))

	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	results, err := ix.Query("postgres connection refused", 3)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Query() returned no results")
	}
	if results[0].PatternID != "net-refused" {
		t.Errorf("top result = %s, want net-refused", results[0].PatternID)
	}
	for _, r := range results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("score %v for %s outside (0,1]", r.Score, r.PatternID)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending at %d", i)
		}
	}
}

func TestIndexStateTransitions(t *testing.T) {
	ix := NewIndex(NewDiskStore(t.TempDir()))

	if got := ix.State(); got != StateEmpty {
		t.Fatalf("initial state = %v, want empty", got)
	}

	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if got := ix.State(); got != StateBuilt {
		t.Errorf("state after rebuild = %v, want built", got)
	}

	ix.Invalidate()
	if got := ix.State(); got != StateStale {
		t.Errorf("state after invalidate = %v, want stale", got)
	}

	// Stale queries still answer from the old vectors.
	results, err := ix.Query("postgres connection refused", 1)
	if err != nil {
		t.Fatalf("Query() on stale index error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("stale query results = %d, want 1", len(results))
	}

	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if got := ix.State(); got != StateBuilt {
		t.Errorf("state after second rebuild = %v, want built", got)
	}
}

func TestIndexPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewIndex(NewDiskStore(dir))
	if err := first.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	// A fresh index on the same directory must answer from persisted
	// state without a rebuild.
	second := NewIndex(NewDiskStore(dir))
	results, err := second.Query("no space left on device", 1)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) != 1 || results[0].PatternID != "disk-full" {
		t.Errorf("Query() = %+v, want disk-full", results)
	}
	if got := second.State(); got != StateBuilt {
		t.Errorf("state after lazy load = %v, want built", got)
	}
}

func TestIndexRebuildOverwrites(t *testing.T) {
	dir := t.TempDir()
	ix := NewIndex(NewDiskStore(dir))

	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if err := ix.Rebuild(indexPatterns()[:1]); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	results, err := ix.Query("no space left on device", 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	for _, r := range results {
		if r.PatternID == "disk-full" {
			t.Error("removed pattern still returned after rebuild")
		}
	}

	// The persisted files must reflect the overwrite too.
	fresh := NewIndex(NewDiskStore(dir))
	size, err := fresh.Size()
	if err != nil {
		t.Fatalf("Size() error: %v", err)
	}
	if size != 1 {
		t.Errorf("persisted size = %d, want 1", size)
	}
}

func TestIndexEmptyPatternSet(t *testing.T) {
	ix := NewIndex(NewDiskStore(t.TempDir()))

	if err := ix.Rebuild(nil); err != nil {
		t.Fatalf("Rebuild(nil) error: %v", err)
	}

	results, err := ix.Query("anything", 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Query() on empty index = %+v, want none", results)
	}
}

func TestIndexQueryWithoutPersistedState(t *testing.T) {
	ix := NewIndex(NewDiskStore(filepath.Join(t.TempDir(), "never-created")))

	results, err := ix.Query("postgres", 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Query() = %+v, want none", results)
	}
	if got := ix.State(); got != StateEmpty {
		t.Errorf("state = %v, want empty", got)
	}
}

func TestIndexDropsZeroScores(t *testing.T) {
	ix := NewIndex(NewDiskStore(t.TempDir()))
	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	results, err := ix.Query("zebra walrus penguin", 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("unrelated query returned %+v, want none", results)
	}
}

func TestIndexWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	ix := NewIndex(NewDiskStore(dir))
	if err := ix.Rebuild(indexPatterns()); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	for _, name := range []string{"vectors.json", "vocabulary.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}
