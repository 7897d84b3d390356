package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/fingerprint"
	"github.com/opskit/errbook/internal/playbook"
)

func newPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage playbook patterns",
		Long: `List, inspect, add, and validate the error patterns in the playbook.

Patterns live in a YAML file. Each records an error's symptoms, its
root causes, and the fixes that worked, plus an optional matcher regex
for exact recognition.`,
	}

	cmd.AddCommand(newPatternsListCommand())
	cmd.AddCommand(newPatternsShowCommand())
	cmd.AddCommand(newPatternsAddCommand())
	cmd.AddCommand(newPatternsValidateCommand())

	return cmd
}

func newPatternsListCommand() *cobra.Command {
	var (
		playbookPath string
		category     string
		severity     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List playbook patterns",
		Long: `List all patterns in the playbook, sorted by id.

Shows id, title, category, and trust score for each pattern.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsList(playbookPath, category, severity)
		},
	}

	cmd.Flags().StringVarP(&playbookPath, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "only show patterns in this category")
	cmd.Flags().StringVar(&severity, "severity", "", "only show patterns with this severity")

	return cmd
}

func newPatternsShowCommand() *cobra.Command {
	var playbookPath string

	cmd := &cobra.Command{
		Use:   "show <pattern-id>",
		Short: "Show one pattern in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsShow(playbookPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&playbookPath, "playbook", "p", "", "playbook file (default from config)")

	return cmd
}

func newPatternsAddCommand() *cobra.Command {
	var (
		playbookPath string
		id           string
		title        string
		category     string
		severity     string
		matcher      string
		symptoms     []string
		causes       []string
		fixes        []string
		fixCommands  []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pattern to the playbook",
		Long: `Add a new error pattern to the playbook.

Repeat --symptom, --cause, and --fix for multiple entries. The Nth
--fix-command attaches to the Nth --fix. Category defaults to a
keyword classification of the title and symptoms; the fingerprint is
derived from the first symptom.

Examples:
  errbook patterns add --title "Postgres refuses connections" \
    --symptom "connection refused to postgres on 5432" \
    --cause "max_connections exhausted" \
    --fix "restart pgbouncer" --fix-command "systemctl restart pgbouncer"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := patternSpec{
				ID:          id,
				Title:       title,
				Category:    category,
				Severity:    severity,
				Matcher:     matcher,
				Symptoms:    symptoms,
				Causes:      causes,
				FixSteps:    fixes,
				FixCommands: fixCommands,
			}
			return runPatternsAdd(playbookPath, spec)
		},
	}

	cmd.Flags().StringVarP(&playbookPath, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().StringVar(&id, "id", "", "pattern id (default: generated)")
	cmd.Flags().StringVar(&title, "title", "", "short description of the error (required)")
	cmd.Flags().StringVar(&category, "category", "", "category (default: classified from title and symptoms)")
	cmd.Flags().StringVar(&severity, "severity", "medium", "severity (low, medium, high)")
	cmd.Flags().StringVar(&matcher, "matcher", "", "regex that recognizes this error exactly")
	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "observed symptom (repeatable)")
	cmd.Flags().StringArrayVar(&causes, "cause", nil, "root cause (repeatable)")
	cmd.Flags().StringArrayVar(&fixes, "fix", nil, "fix step (repeatable)")
	cmd.Flags().StringArrayVar(&fixCommands, "fix-command", nil, "command for the matching --fix (repeatable)")

	if err := cmd.MarkFlagRequired("title"); err != nil {
		panic(err)
	}

	return cmd
}

func newPatternsValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate playbook files",
		Long: `Validate one or more playbook YAML files.

Checks YAML syntax, required fields, severity values, duplicate ids,
and that every matcher regex compiles. With no arguments, validates
the configured playbook.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternsValidate(args)
		},
	}

	return cmd
}

func runPatternsList(playbookPath, category, severity string) error {
	patterns, err := loadPlaybookPatterns(playbookPath)
	if err != nil {
		return err
	}

	filtered := make([]*playbook.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if category != "" && p.Category != category {
			continue
		}
		if severity != "" && string(p.Severity) != severity {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	f, err := newFormatter()
	if err != nil {
		return err
	}
	output, err := f.FormatPatterns(filtered)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Print(string(output))
	return nil
}

func runPatternsShow(playbookPath, id string) error {
	store := openPlaybook(playbookPath)
	p, err := store.Get(id)
	if err != nil {
		return err
	}

	f, err := newFormatter()
	if err != nil {
		return err
	}
	output, err := f.FormatPattern(p)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Print(string(output))
	return nil
}

// patternSpec carries the add command's flags.
type patternSpec struct {
	ID          string
	Title       string
	Category    string
	Severity    string
	Matcher     string
	Symptoms    []string
	Causes      []string
	FixSteps    []string
	FixCommands []string
}

func runPatternsAdd(playbookPath string, spec patternSpec) error {
	p := buildPattern(spec)

	store := openPlaybook(playbookPath)
	if err := store.Append(p); err != nil {
		return err
	}
	if err := rebuildIndex(store); err != nil {
		return err
	}

	fmt.Printf("%s Added pattern %s to %s\n", GetEmoji("pattern"), p.ID, store.Path())
	return nil
}

func buildPattern(spec patternSpec) *playbook.Pattern {
	p := &playbook.Pattern{
		ID:       spec.ID,
		Title:    spec.Title,
		Category: spec.Category,
		Severity: playbook.Severity(spec.Severity),
		Matcher:  spec.Matcher,
		Symptoms: spec.Symptoms,
	}

	if p.ID == "" {
		p.ID = "manual-" + uuid.New().String()
	}
	if p.Category == "" {
		text := spec.Title
		for _, s := range spec.Symptoms {
			text += " " + s
		}
		p.Category = fingerprint.Classify(text)
	}
	if len(spec.Symptoms) > 0 {
		p.Fingerprint = fingerprint.Normalize(spec.Symptoms[0])
	}

	p.RootCauses = spec.Causes
	for i, step := range spec.FixSteps {
		fix := playbook.Fix{Step: step}
		if i < len(spec.FixCommands) {
			fix.Command = spec.FixCommands[i]
		}
		p.Fixes = append(p.Fixes, fix)
	}

	return p
}

func runPatternsValidate(files []string) error {
	if len(files) == 0 {
		files = []string{openPlaybook("").Path()}
	}

	allValid := true
	for _, file := range files {
		if err := validatePlaybookFile(file); err != nil {
			printViolations(file, err)
			allValid = false
			continue
		}
		fmt.Printf("%s %s: Valid\n", GetEmoji("success"), file)
	}

	if !allValid {
		return fmt.Errorf("some playbook files are invalid")
	}
	return nil
}

func validatePlaybookFile(file string) error {
	patterns, err := playbook.NewStore(file).Load()
	if err != nil {
		return err
	}
	return playbook.Validate(patterns)
}

func printViolations(file string, err error) {
	var violations playbook.Violations
	if !errors.As(err, &violations) {
		fmt.Printf("%s %s: %v\n", GetEmoji("error"), file, err)
		return
	}

	fmt.Printf("%s %s: %d violations\n", GetEmoji("error"), file, len(violations))
	for _, v := range violations {
		fmt.Printf("   %s: %s\n", v.Path, v.Message)
	}
}
