package fingerprint

import (
	"strings"
)

// CategoryGeneral is the fallback when no classification rule matches.
const CategoryGeneral = "general"

type rule struct {
	category string
	keywords []string
}

// classifyRules is an ordered list; the first rule with a matching
// keyword wins, so broad terms like "timeout" sit above narrower ones.
var classifyRules = []rule{
	{
		category: "network",
		keywords: []string{
			"connection refused", "connection reset", "econnrefused",
			"broken pipe", "timeout", "timed out", "unreachable",
			"no route to host", "dns", "dial tcp", "tls handshake",
		},
	},
	{
		category: "database",
		keywords: []string{
			"database", "sql", "postgres", "redis", "deadlock",
			"duplicate key", "foreign key", "transaction",
		},
	},
	{
		category: "filesystem",
		keywords: []string{
			"no space left", "disk full", "no such file", "file not found",
			"permission denied", "read-only file system",
			"too many open files", "i/o error",
		},
	},
	{
		category: "memory",
		keywords: []string{
			"out of memory", "oom", "cannot allocate memory",
			"memory limit", "segmentation fault",
		},
	},
}

// Classify returns a coarse category label for an error message by
// keyword lookup, falling back to CategoryGeneral.
func Classify(message string) string {
	m := strings.ToLower(message)
	for _, r := range classifyRules {
		for _, keyword := range r.keywords {
			if strings.Contains(m, keyword) {
				return r.category
			}
		}
	}
	return CategoryGeneral
}
