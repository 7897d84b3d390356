// Package prompt builds LLM investigation prompts from playbook
// patterns. Prompts are rendered for the operator to paste into their
// assistant of choice, nothing here talks to a model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/opskit/errbook/internal/logstore"
	"github.com/opskit/errbook/internal/match"
	"github.com/opskit/errbook/internal/playbook"
)

// InvestigationPattern creates prompts that ask an LLM to enrich a
// playbook pattern with likely root causes and fixes
type InvestigationPattern struct {
	promptfmt.BasePattern
	Pattern    *playbook.Pattern
	RecentHits []logstore.RecurringGroup
	MaxHits    int
}

// NewInvestigationPattern creates a new pattern investigation prompt builder
func NewInvestigationPattern() *InvestigationPattern {
	return &InvestigationPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Investigates a recurring error pattern using its playbook record",
			Tags:        []string{"errbook", "investigation", "root-cause"},
		},
		MaxHits: 5,
	}
}

func (ip *InvestigationPattern) WithPattern(p *playbook.Pattern) *InvestigationPattern {
	ip.Pattern = p
	return ip
}

func (ip *InvestigationPattern) WithRecentHits(groups []logstore.RecurringGroup) *InvestigationPattern {
	ip.RecentHits = groups
	return ip
}

func (ip *InvestigationPattern) WithMaxHits(n int) *InvestigationPattern {
	ip.MaxHits = n
	return ip
}

func (ip *InvestigationPattern) Build() *promptfmt.Prompt {
	if ip.Pattern == nil {
		// Return a generic triage prompt if no pattern is provided
		return promptfmt.New().
			System("You are a site reliability engineer investigating recurring production errors.").
			User("Investigate the provided error and suggest likely root causes and concrete fixes.").
			Build()
	}

	p := ip.Pattern
	pb := promptfmt.New().
		System("You are a site reliability engineer investigating recurring production errors. Ground your answers in the evidence provided and prefer concrete, reversible remediation steps.").
		User("Investigate this recurring error pattern:\n\nID: %s\nTitle: %s\nCategory: %s\nSeverity: %s\nFingerprint: %s",
			p.ID, p.Title, p.Category, p.Severity, p.Fingerprint)

	if len(p.Symptoms) > 0 {
		pb.AddContext("symptoms", "Observed symptoms:\n"+bulletList(p.Symptoms))
	}
	if len(p.RootCauses) > 0 {
		pb.AddContext("known_causes", "Root causes recorded so far:\n"+bulletList(p.RootCauses))
	}

	ip.addFixHistory(pb)

	if len(ip.RecentHits) > 0 {
		ip.addRecentHits(pb)
	}

	// Define expected response structure
	type InvestigationResponse struct {
		Assessment string `json:"assessment"`
		RootCauses []struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Confidence  float64 `json:"confidence"` // 0-1 scale
		} `json:"root_causes"`
		Fixes []struct {
			Step    string `json:"step"`
			Command string `json:"command,omitempty"`
			Risk    string `json:"risk"` // "low", "medium", "high"
		} `json:"fixes"`
		Diagnostics []string `json:"diagnostics"` // commands to run before fixing
	}

	return pb.ExpectJSON(&InvestigationResponse{}).Build()
}

// addFixHistory records what was already tried and how it was rated
func (ip *InvestigationPattern) addFixHistory(pb *promptfmt.PromptBuilder) {
	p := ip.Pattern

	if len(p.Fixes) == 0 {
		pb.AddContext("fix_history", "No fixes recorded yet. This pattern needs its first remediation steps.")
		return
	}

	text := fmt.Sprintf("Fixes tried so far (operator trust %.0f%%, %d helpful / %d harmful votes):\n",
		p.Feedback.TrustScore()*100, p.Feedback.Helpful, p.Feedback.Harmful)
	for i, fix := range p.Fixes {
		text += fmt.Sprintf("%d. %s", i+1, fix.Step)
		if fix.Command != "" {
			text += fmt.Sprintf(" (`%s`)", fix.Command)
		}
		text += "\n"
	}

	pb.AddContext("fix_history", text)
}

// addRecentHits summarizes how often the pattern fired recently
func (ip *InvestigationPattern) addRecentHits(pb *promptfmt.PromptBuilder) {
	limit := ip.MaxHits
	if limit <= 0 || limit > len(ip.RecentHits) {
		limit = len(ip.RecentHits)
	}

	text := "Recent occurrences from the logs:\n"
	for i := 0; i < limit; i++ {
		g := ip.RecentHits[i]
		text += fmt.Sprintf("- %d× %s\n", g.Count, g.Message)
	}

	pb.AddContext("recent_hits", text)
}

// TriagePattern creates prompts for errors with no confident playbook match
type TriagePattern struct {
	promptfmt.BasePattern
	Query       string
	NearMatches []*match.Result
	MaxMatches  int
}

// NewTriagePattern creates a new unmatched-error triage prompt builder
func NewTriagePattern() *TriagePattern {
	return &TriagePattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Triages an error message the playbook does not cover yet",
			Tags:        []string{"errbook", "triage", "unknown-error"},
		},
		MaxMatches: 3,
	}
}

func (tp *TriagePattern) WithQuery(query string) *TriagePattern {
	tp.Query = query
	return tp
}

func (tp *TriagePattern) WithNearMatches(results []*match.Result) *TriagePattern {
	tp.NearMatches = results
	return tp
}

func (tp *TriagePattern) WithMaxMatches(n int) *TriagePattern {
	tp.MaxMatches = n
	return tp
}

func (tp *TriagePattern) Build() *promptfmt.Prompt {
	pb := promptfmt.New().
		System("You are a site reliability engineer triaging an unfamiliar production error. Classify it, estimate blast radius, and propose first remediation steps.").
		User("Triage this error message:\n\n%s", tp.Query)

	if len(tp.NearMatches) > 0 {
		tp.addNearMatches(pb)
	}

	// Define expected response structure
	type TriageResponse struct {
		Summary    string `json:"summary"`
		Category   string `json:"category"` // "network", "database", "filesystem", "memory", "general"
		Severity   string `json:"severity"` // "low", "medium", "high"
		RootCauses []struct {
			Title      string  `json:"title"`
			Confidence float64 `json:"confidence"` // 0-1 scale
		} `json:"root_causes"`
		Fixes []struct {
			Step    string `json:"step"`
			Command string `json:"command,omitempty"`
		} `json:"fixes"`
		RelatedPattern string `json:"related_pattern"` // closest playbook id, or empty
	}

	return pb.ExpectJSON(&TriageResponse{}).Build()
}

// addNearMatches lists playbook entries that scored below the match
// threshold but may still be related
func (tp *TriagePattern) addNearMatches(pb *promptfmt.PromptBuilder) {
	limit := tp.MaxMatches
	if limit <= 0 || limit > len(tp.NearMatches) {
		limit = len(tp.NearMatches)
	}

	text := "Closest existing playbook patterns (none matched confidently):\n"
	for i := 0; i < limit; i++ {
		r := tp.NearMatches[i]
		text += fmt.Sprintf("- %s: %s (score %.1f via %s)\n",
			r.Pattern.ID, r.Pattern.Title, r.Score, r.MatchedBy)
	}

	pb.AddContext("near_matches", text)
}

// bulletList renders strings as a dash list
func bulletList(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString("- " + v + "\n")
	}
	return b.String()
}

// Convenience functions for errbook prompt patterns
func Investigation() *InvestigationPattern {
	return NewInvestigationPattern()
}

func Triage() *TriagePattern {
	return NewTriagePattern()
}
