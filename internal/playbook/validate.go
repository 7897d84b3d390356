package playbook

import (
	"fmt"
	"regexp"
	"strings"
)

// Violation is a single schema problem, located by a field path
// such as "patterns[2].severity".
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Violations is the full set of schema problems found in one pass.
// Validation never stops at the first problem; callers get everything
// that needs fixing at once.
type Violations []Violation

func (v Violations) Error() string {
	if len(v) == 1 {
		return fmt.Sprintf("invalid playbook: %s: %s", v[0].Path, v[0].Message)
	}
	return fmt.Sprintf("invalid playbook: %d violations", len(v))
}

// Validate checks every pattern in the set and accumulates all
// violations: missing required fields, invalid severities, duplicate
// ids, matchers that do not compile, and negative feedback counters.
func Validate(patterns []*Pattern) error {
	var violations Violations
	seen := make(map[string]int)

	for i, p := range patterns {
		if p.ID == "" {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].id", i),
				Message: "missing required field",
			})
		} else if first, dup := seen[p.ID]; dup {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].id", i),
				Message: fmt.Sprintf("duplicate id %q, first used by patterns[%d]", p.ID, first),
			})
		} else {
			seen[p.ID] = i
		}

		if strings.TrimSpace(p.Title) == "" {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].title", i),
				Message: "missing required field",
			})
		}

		if !p.Severity.IsValid() {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].severity", i),
				Message: fmt.Sprintf("invalid severity %q, must be low, medium, or high", p.Severity),
			})
		}

		if p.Matcher != "" {
			if _, err := regexp.Compile(p.Matcher); err != nil {
				violations = append(violations, Violation{
					Path:    fmt.Sprintf("patterns[%d].matcher", i),
					Message: fmt.Sprintf("invalid regex: %v", err),
				})
			}
		}

		if p.Feedback.Helpful < 0 {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].feedback.helpful", i),
				Message: "must not be negative",
			})
		}
		if p.Feedback.Harmful < 0 {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("patterns[%d].feedback.harmful", i),
				Message: "must not be negative",
			})
		}

		for j, fix := range p.Fixes {
			if strings.TrimSpace(fix.Step) == "" {
				violations = append(violations, Violation{
					Path:    fmt.Sprintf("patterns[%d].fixes[%d].step", i, j),
					Message: "missing required field",
				})
			}
		}
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}
