package config

// SampleConfig returns a fully commented configuration file with every
// option and its default.
func SampleConfig() string {
	return `# errbook configuration file
#
# Search order:
#   1. ./.errbook.yaml
#   2. ~/.config/errbook/config.yaml
#   3. /etc/errbook/config.yaml
#
# Environment variables with the ERRBOOK_ prefix override file values,
# e.g. ERRBOOK_PLAYBOOK_PATH or ERRBOOK_MATCH_KNOWN_THRESHOLD.

version: "1.0"

playbook:
  # YAML file holding the error patterns and their fixes.
  path: "./playbook.yaml"

index:
  # Directory for the persisted TF-IDF similarity index.
  dir: ".errbook/index"

logs:
  # Log files scanned by 'errbook extract' when no files are given
  # on the command line.
  paths: []
  # Log format: auto, json, logfmt, or text.
  format: "auto"

match:
  # Extraction treats a group as known when the best match scores
  # strictly above this threshold (0-100).
  known_threshold: 80
  # Keyword matches at or below this score are dropped (0-100).
  min_keyword_score: 20
  # Default number of results for 'errbook match' and 'errbook similar'.
  default_limit: 5

extract:
  # Lookback window in days for scanning logs.
  window_days: 7
  # Minimum occurrence count for a group to be considered recurring.
  min_count: 3
  # Maximum groups processed per extraction run.
  max_rows: 50
  # Occurrence counts at which a new candidate is rated high or
  # medium severity.
  high_count: 10
  medium_count: 5

output:
  # Output format: text, json, markdown, or csv.
  default_format: "text"
  # Color mode: auto, always, or never.
  color_mode: "auto"
  # Show diagnostic output on stderr.
  verbose: false
`
}

// MinimalSampleConfig returns a compact configuration with only the
// settings most installs change.
func MinimalSampleConfig() string {
	return `# errbook configuration (minimal)

playbook:
  path: "./playbook.yaml"

logs:
  paths: []
  format: "auto"

output:
  default_format: "text"
`
}
