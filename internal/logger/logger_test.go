package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fixedChecker struct {
	verbose bool
}

func (c *fixedChecker) IsVerbose() bool {
	return c.verbose
}

func TestDebugGatedOnVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := New("match", &fixedChecker{verbose: false})
	log.SetWriter(&buf)

	log.Debug("scored %d patterns", 3)
	log.Info("loaded playbook")
	if buf.Len() != 0 {
		t.Errorf("Expected no output when not verbose, got %q", buf.String())
	}

	log = New("match", &fixedChecker{verbose: true})
	log.SetWriter(&buf)
	log.Debug("scored %d patterns", 3)

	out := buf.String()
	if !strings.Contains(out, "DEBUG") {
		t.Errorf("Expected DEBUG level in output, got %q", out)
	}
	if !strings.Contains(out, "[match]") {
		t.Errorf("Expected component tag in output, got %q", out)
	}
	if !strings.Contains(out, "scored 3 patterns") {
		t.Errorf("Expected formatted message in output, got %q", out)
	}
}

func TestWarnAlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	log := New("playbook", &fixedChecker{verbose: false})
	log.SetWriter(&buf)

	log.Warn("matcher for %s is invalid, falling back to keywords", "db-conn-refused")

	out := buf.String()
	if !strings.Contains(out, "WARN") {
		t.Errorf("Expected WARN level in output, got %q", out)
	}
	if !strings.Contains(out, "db-conn-refused") {
		t.Errorf("Expected message in output, got %q", out)
	}
}

func TestErrorAlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	log := New("", &fixedChecker{verbose: false})
	log.SetWriter(&buf)

	log.Error("failed to load playbook")

	out := buf.String()
	if !strings.Contains(out, "ERROR") {
		t.Errorf("Expected ERROR level in output, got %q", out)
	}
	// Empty component falls back to main
	if !strings.Contains(out, "[main]") {
		t.Errorf("Expected main component tag, got %q", out)
	}
}

func TestInfoWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("extract", &fixedChecker{verbose: true})
	log.SetWriter(&buf)

	log.InfoWithFields("scan complete",
		Count(42),
		Duration(150*time.Millisecond),
		Path("/var/log/app.log"),
	)

	out := buf.String()
	if !strings.Contains(out, "scan complete") {
		t.Errorf("Expected message in output, got %q", out)
	}
	if !strings.Contains(out, "count=42") {
		t.Errorf("Expected count field in output, got %q", out)
	}
	if !strings.Contains(out, "duration=150ms") {
		t.Errorf("Expected duration field in output, got %q", out)
	}
	if !strings.Contains(out, "path=/var/log/app.log") {
		t.Errorf("Expected path field in output, got %q", out)
	}
}

func TestNewWithCallback(t *testing.T) {
	var buf bytes.Buffer
	verbose := false
	log := NewWithCallback("index", func() bool { return verbose })
	log.SetWriter(&buf)

	log.Info("rebuilding")
	if buf.Len() != 0 {
		t.Errorf("Expected no output before flag flips, got %q", buf.String())
	}

	// Flag parsed after construction
	verbose = true
	log.Info("rebuilding")
	if !strings.Contains(buf.String(), "rebuilding") {
		t.Errorf("Expected output after flag flips, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("root", &fixedChecker{verbose: true})
	log.SetWriter(&buf)

	sub := log.WithComponent("vectorstore")
	sub.Info("index loaded")

	if !strings.Contains(buf.String(), "[vectorstore]") {
		t.Errorf("Expected derived component tag, got %q", buf.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	if f := F("key", "value"); f.Key != "key" || f.Value != "value" {
		t.Errorf("F built unexpected field: %+v", f)
	}
	if f := PatternID("db-conn-refused"); f.Key != "pattern" || f.Value != "db-conn-refused" {
		t.Errorf("PatternID built unexpected field: %+v", f)
	}
}
