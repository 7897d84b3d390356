package cli

import (
	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/playbook"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetSeverityEmoji returns emoji for severity levels with fallback support
func GetSeverityEmoji(severity playbook.Severity) string {
	switch severity {
	case playbook.SeverityHigh:
		return GetEmoji("high")
	case playbook.SeverityMedium:
		return GetEmoji("medium")
	case playbook.SeverityLow:
		return GetEmoji("low")
	default:
		return GetEmoji("info")
	}
}
