package playbook

import (
	"strings"
)

// Severity classifies how urgent a pattern is when it fires.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid reports whether s is one of the known severity levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity string, accepting any casing.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	return sev, sev.IsValid()
}

// Fix is a single remediation step, optionally with a command to run.
type Fix struct {
	Step    string `yaml:"step" json:"step"`
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
}

// Feedback tracks how often a pattern's fixes were reported useful.
type Feedback struct {
	Helpful int `yaml:"helpful" json:"helpful"`
	Harmful int `yaml:"harmful" json:"harmful"`
}

// TrustScore maps feedback counts to (0,1) with a neutral prior of 0.5,
// so a single vote cannot pin a pattern to the extremes.
func (f Feedback) TrustScore() float64 {
	return float64(f.Helpful+1) / float64(f.Helpful+f.Harmful+2)
}

// Pattern is one entry in the playbook: a known error with its
// symptoms, root causes, and the fixes that worked.
type Pattern struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	Severity    Severity `yaml:"severity" json:"severity"`
	Fingerprint string   `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
	Matcher     string   `yaml:"matcher,omitempty" json:"matcher,omitempty"`
	Symptoms    []string `yaml:"symptoms,omitempty" json:"symptoms,omitempty"`
	RootCauses  []string `yaml:"root_causes,omitempty" json:"root_causes,omitempty"`
	Fixes       []Fix    `yaml:"fixes,omitempty" json:"fixes,omitempty"`
	Feedback    Feedback `yaml:"feedback" json:"feedback"`
}

// TrustScore returns the trust accumulated by the pattern's feedback.
func (p *Pattern) TrustScore() float64 {
	return p.Feedback.TrustScore()
}

// SearchText returns the text keyword matching runs against:
// the title plus all symptoms.
func (p *Pattern) SearchText() string {
	parts := make([]string, 0, len(p.Symptoms)+1)
	parts = append(parts, p.Title)
	parts = append(parts, p.Symptoms...)
	return strings.Join(parts, " ")
}

// Document returns the composite text indexed for similarity search:
// title, category, symptoms, root causes, and fix steps.
func (p *Pattern) Document() string {
	parts := make([]string, 0, 2+len(p.Symptoms)+len(p.RootCauses)+len(p.Fixes))
	parts = append(parts, p.Title)
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	parts = append(parts, p.Symptoms...)
	parts = append(parts, p.RootCauses...)
	for _, fix := range p.Fixes {
		parts = append(parts, fix.Step)
	}
	return strings.Join(parts, " ")
}
