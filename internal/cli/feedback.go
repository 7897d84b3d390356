package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	feedbackPlaybook string
	feedbackHelpful  bool
	feedbackHarmful  bool
)

func newFeedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <pattern-id>",
		Short: "Record whether a pattern's fixes helped",
		Long: `Record whether a pattern's fixes helped or made things worse.

Feedback accumulates into a trust score shown next to each match, so
patterns whose fixes keep working rank as more trustworthy over time.

Examples:
  errbook feedback db-conn-refused --helpful
  errbook feedback db-conn-refused --harmful`,
		Args: cobra.ExactArgs(1),
		RunE: runFeedback,
	}

	cmd.Flags().StringVarP(&feedbackPlaybook, "playbook", "p", "", "playbook file (default from config)")
	cmd.Flags().BoolVar(&feedbackHelpful, "helpful", false, "the fixes resolved the problem")
	cmd.Flags().BoolVar(&feedbackHarmful, "harmful", false, "the fixes were wrong or made things worse")

	return cmd
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackHelpful == feedbackHarmful {
		return fmt.Errorf("pass exactly one of --helpful or --harmful")
	}

	store := openPlaybook(feedbackPlaybook)
	p, err := store.RecordFeedback(args[0], feedbackHelpful)
	if err != nil {
		return err
	}

	kind := "helpful"
	symbol := GetEmoji("helpful")
	if feedbackHarmful {
		kind = "harmful"
		symbol = GetEmoji("harmful")
	}

	fmt.Printf("%s Recorded %s feedback for %s (trust %.0f%%, %d helpful / %d harmful)\n",
		symbol, kind, p.ID, p.Feedback.TrustScore()*100, p.Feedback.Helpful, p.Feedback.Harmful)
	return nil
}
