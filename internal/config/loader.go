package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.errbook.yaml",               // Project-specific config (highest priority)
	"~/.config/errbook/config.yaml", // User config
	"/etc/errbook/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.errbook.yaml
// 4. ~/.config/errbook/config.yaml
// 5. /etc/errbook/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		// Validate the custom path for security
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		// Reverse the slice to load lowest priority first
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					// Log warning but continue with other config files
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Create a temporary config to unmarshal into
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Merge the file config into the existing config
	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Playbook Config
		"ERRBOOK_PLAYBOOK_PATH": func(v string) error { config.Playbook.Path = v; return nil },

		// Index Config
		"ERRBOOK_INDEX_DIR": func(v string) error { config.Index.Dir = v; return nil },

		// Logs Config
		"ERRBOOK_LOGS_FORMAT": func(v string) error { config.Logs.Format = v; return nil },

		// Match Config
		"ERRBOOK_MATCH_KNOWN_THRESHOLD":   func(v string) error { return parseFloat(v, &config.Match.KnownThreshold) },
		"ERRBOOK_MATCH_MIN_KEYWORD_SCORE": func(v string) error { return parseFloat(v, &config.Match.MinKeywordScore) },
		"ERRBOOK_MATCH_DEFAULT_LIMIT":     func(v string) error { return parseInt(v, &config.Match.DefaultLimit) },

		// Extract Config
		"ERRBOOK_EXTRACT_WINDOW_DAYS":  func(v string) error { return parseInt(v, &config.Extract.WindowDays) },
		"ERRBOOK_EXTRACT_MIN_COUNT":    func(v string) error { return parseInt(v, &config.Extract.MinCount) },
		"ERRBOOK_EXTRACT_MAX_ROWS":     func(v string) error { return parseInt(v, &config.Extract.MaxRows) },
		"ERRBOOK_EXTRACT_HIGH_COUNT":   func(v string) error { return parseInt(v, &config.Extract.HighCount) },
		"ERRBOOK_EXTRACT_MEDIUM_COUNT": func(v string) error { return parseInt(v, &config.Extract.MediumCount) },

		// Output Config
		"ERRBOOK_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"ERRBOOK_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"ERRBOOK_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Handle special case for log paths (comma-separated list)
	if paths := os.Getenv("ERRBOOK_LOGS_PATHS"); paths != "" {
		config.Logs.Paths = strings.Split(paths, ",")
		// Trim whitespace from each path
		for i, path := range config.Logs.Paths {
			config.Logs.Paths[i] = strings.TrimSpace(path)
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	// Version
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergePlaybookConfig(&dst.Playbook, &src.Playbook)
	mergeIndexConfig(&dst.Index, &src.Index)
	mergeLogsConfig(&dst.Logs, &src.Logs)
	mergeMatchConfig(&dst.Match, &src.Match)
	mergeExtractConfig(&dst.Extract, &src.Extract)
	mergeOutputConfig(&dst.Output, &src.Output)
}

// mergePlaybookConfig merges playbook configuration
func mergePlaybookConfig(dst, src *PlaybookConfig) {
	if src.Path != "" {
		dst.Path = src.Path
	}
}

// mergeIndexConfig merges index configuration
func mergeIndexConfig(dst, src *IndexConfig) {
	if src.Dir != "" {
		dst.Dir = src.Dir
	}
}

// mergeLogsConfig merges log source configuration
func mergeLogsConfig(dst, src *LogsConfig) {
	if len(src.Paths) > 0 {
		dst.Paths = src.Paths
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
}

// mergeMatchConfig merges match configuration
func mergeMatchConfig(dst, src *MatchConfig) {
	if src.KnownThreshold != 0 {
		dst.KnownThreshold = src.KnownThreshold
	}
	if src.MinKeywordScore != 0 {
		dst.MinKeywordScore = src.MinKeywordScore
	}
	if src.DefaultLimit != 0 {
		dst.DefaultLimit = src.DefaultLimit
	}
}

// mergeExtractConfig merges extraction configuration
func mergeExtractConfig(dst, src *ExtractConfig) {
	if src.WindowDays != 0 {
		dst.WindowDays = src.WindowDays
	}
	if src.MinCount != 0 {
		dst.MinCount = src.MinCount
	}
	if src.MaxRows != 0 {
		dst.MaxRows = src.MaxRows
	}
	if src.HighCount != 0 {
		dst.HighCount = src.HighCount
	}
	if src.MediumCount != 0 {
		dst.MediumCount = src.MediumCount
	}
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	// For boolean fields, we need to check if they were explicitly set
	// This is a limitation of YAML unmarshaling, but we'll handle it in env overrides
	mergeIfSet(&dst.Verbose, src.Verbose)
}

// mergeIfSet only merges boolean values if they appear to be explicitly set
// This is a simple heuristic, but works for most cases
func mergeIfSet(dst *bool, src bool) {
	// For now, always merge - this could be improved with custom unmarshaling
	*dst = src
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
