package config

import (
	"fmt"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Playbook PlaybookConfig `yaml:"playbook" json:"playbook"`
	Index    IndexConfig    `yaml:"index" json:"index"`
	Logs     LogsConfig     `yaml:"logs" json:"logs"`
	Match    MatchConfig    `yaml:"match" json:"match"`
	Extract  ExtractConfig  `yaml:"extract" json:"extract"`
	Output   OutputConfig   `yaml:"output" json:"output"`
}

// PlaybookConfig configures where pattern records live
type PlaybookConfig struct {
	Path string `yaml:"path" json:"path"` // playbook YAML file
}

// IndexConfig configures the persisted similarity index
type IndexConfig struct {
	Dir string `yaml:"dir" json:"dir"` // directory for vectors.json and vocabulary.json
}

// LogsConfig configures the log sources used by extraction
type LogsConfig struct {
	Paths  []string `yaml:"paths" json:"paths"`   // log files to scan
	Format string   `yaml:"format" json:"format"` // auto|json|logfmt|text
}

// MatchConfig configures match scoring and thresholds
type MatchConfig struct {
	KnownThreshold  float64 `yaml:"known_threshold" json:"known_threshold"`     // extraction marks a group known above this score
	MinKeywordScore float64 `yaml:"min_keyword_score" json:"min_keyword_score"` // keyword matches at or below this score are dropped
	DefaultLimit    int     `yaml:"default_limit" json:"default_limit"`         // result cap when no --limit is given, 0 = unlimited
}

// ExtractConfig configures the log extraction pipeline
type ExtractConfig struct {
	WindowDays  int `yaml:"window_days" json:"window_days"`   // lookback window in days
	MinCount    int `yaml:"min_count" json:"min_count"`       // groups below this count are ignored
	MaxRows     int `yaml:"max_rows" json:"max_rows"`         // cap on groups per run
	HighCount   int `yaml:"high_count" json:"high_count"`     // candidate severity high at or above this count
	MediumCount int `yaml:"medium_count" json:"medium_count"` // candidate severity medium at or above this count
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Playbook: PlaybookConfig{
			Path: "./playbook.yaml",
		},
		Index: IndexConfig{
			Dir: ".errbook/index",
		},
		Logs: LogsConfig{
			Paths:  []string{},
			Format: "auto",
		},
		Match: MatchConfig{
			KnownThreshold:  80,
			MinKeywordScore: 20,
			DefaultLimit:    5,
		},
		Extract: ExtractConfig{
			WindowDays:  7,
			MinCount:    3,
			MaxRows:     50,
			HighCount:   10,
			MediumCount: 5,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validatePlaybookConfig(); err != nil {
		return err
	}
	if err := c.validateLogsConfig(); err != nil {
		return err
	}
	if err := c.validateMatchConfig(); err != nil {
		return err
	}
	if err := c.validateExtractConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return nil
}

// validatePlaybookConfig validates playbook-related configuration
func (c *Config) validatePlaybookConfig() error {
	if c.Playbook.Path == "" {
		return fmt.Errorf("playbook path must not be empty")
	}
	return nil
}

// validateLogsConfig validates log source configuration
func (c *Config) validateLogsConfig() error {
	if c.Logs.Format != "" {
		validFormats := map[string]bool{
			"auto":   true,
			"json":   true,
			"logfmt": true,
			"text":   true,
		}
		if !validFormats[c.Logs.Format] {
			return fmt.Errorf("invalid log format: %s (must be one of: auto, json, logfmt, text)", c.Logs.Format)
		}
	}
	return nil
}

// validateMatchConfig validates match-related configuration
func (c *Config) validateMatchConfig() error {
	if c.Match.KnownThreshold < 0 || c.Match.KnownThreshold > 100 {
		return fmt.Errorf("known_threshold must be between 0 and 100")
	}
	if c.Match.MinKeywordScore < 0 || c.Match.MinKeywordScore > 100 {
		return fmt.Errorf("min_keyword_score must be between 0 and 100")
	}
	if c.Match.DefaultLimit < 0 {
		return fmt.Errorf("default_limit must be non-negative")
	}
	return nil
}

// validateExtractConfig validates extraction-related configuration
func (c *Config) validateExtractConfig() error {
	if c.Extract.WindowDays < 1 {
		return fmt.Errorf("window_days must be greater than 0")
	}
	if c.Extract.MinCount < 1 {
		return fmt.Errorf("min_count must be greater than 0")
	}
	if c.Extract.MaxRows < 1 {
		return fmt.Errorf("max_rows must be greater than 0")
	}
	if c.Extract.MediumCount < 1 {
		return fmt.Errorf("medium_count must be greater than 0")
	}
	if c.Extract.HighCount < c.Extract.MediumCount {
		return fmt.Errorf("high_count must be at least medium_count")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"text":     true,
			"json":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: text, json, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}
