// Package fingerprint derives stable dedup keys and coarse categories
// from raw error text.
package fingerprint

import (
	"regexp"
	"strings"
)

// MaxLength bounds fingerprint size so keys stay comparable and cheap
// to store.
const MaxLength = 100

// Placeholder tokens substituted for the variable parts of a message.
const (
	ipToken   = "<ip>"
	portToken = "<port>"
	uuidToken = "<uuid>"
	numToken  = "<num>"
)

// Substitution order matters: IP and UUID shapes must be replaced
// before the generic integer rule, or their digit groups get mangled.
var (
	ipRe   = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	portRe = regexp.MustCompile(`:\d+\b`)
	uuidRe = regexp.MustCompile(`\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	numRe  = regexp.MustCompile(`\b\d+\b`)
	wsRe   = regexp.MustCompile(`\s+`)
)

// Normalize reduces a raw error message to a stable fingerprint:
// lower-cased, with IPs, ports, UUIDs, and standalone numbers replaced
// by placeholder tokens, whitespace collapsed, and the result truncated
// to MaxLength. Normalize is deterministic and idempotent.
func Normalize(message string) string {
	s := strings.ToLower(message)
	s = ipRe.ReplaceAllString(s, ipToken)
	s = portRe.ReplaceAllString(s, ":"+portToken)
	s = uuidRe.ReplaceAllString(s, uuidToken)
	s = numRe.ReplaceAllString(s, numToken)
	s = wsRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return truncate(s, MaxLength)
}

// truncate cuts s to at most limit runes, backing up to the previous
// word boundary so a token is never split in half.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
