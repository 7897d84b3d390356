package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/opskit/errbook/internal/config"
	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/logger"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
)

// globalConfig holds the configuration loaded in PersistentPreRunE,
// shared by every command in the process.
var globalConfig *config.Config

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "errbook",
		Short: "Error Pattern Playbook",
		Long: `errbook answers "have we seen this error before, and how was it fixed?"
from a YAML playbook of known error patterns.

It matches error messages against recorded patterns by regex and keyword
overlap, finds related patterns with a TF-IDF similarity index, and mines
recurring errors out of log files into new pattern candidates.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			// Set emoji state for all components
			emoji.SetEmojiDisabled(noEmoji)

			if err := loadGlobalConfig(); err != nil {
				return err
			}

			// Flags that weren't set fall back to config values
			if !cmd.Flag("output").Changed {
				outputFmt = globalConfig.Output.DefaultFormat
			}
			if !cmd.Flag("verbose").Changed {
				verbose = globalConfig.Output.Verbose
			}
			if globalConfig.Output.ColorMode == "never" {
				noColor = true
			}

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, markdown, csv)")

	// Add subcommands
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newSimilarCommand())
	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newPatternsCommand())
	rootCmd.AddCommand(newFeedbackCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newPromptCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// loadGlobalConfig loads the effective configuration. A broken config
// found by discovery degrades to defaults with a warning; a broken
// config passed with --config is an error.
func loadGlobalConfig() error {
	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		if cfgFile != "" {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	globalConfig = cfg
	return nil
}

// GetGlobalConfig returns the loaded configuration, loading it first
// when called outside a command run.
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		if err := loadGlobalConfig(); err != nil {
			globalConfig = config.DefaultConfig()
		}
	}
	return globalConfig
}

// GetLogger returns a component logger wired to the global verbose flag.
func GetLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("errbook %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	return outputFmt
}
