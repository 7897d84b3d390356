// Package logstore answers "which errors keep recurring?" over local
// log files: it parses entries, keeps error-level ones inside a
// lookback window, and groups them by fingerprint.
package logstore

import (
	"fmt"
	"time"
)

// MaxGroups caps how many grouped rows a query returns.
const MaxGroups = 50

// RecurringGroup is one grouped recurring error: a representative
// message, its dedup fingerprint, and occurrence bookkeeping.
type RecurringGroup struct {
	Message     string    `json:"message"`
	Fingerprint string    `json:"fingerprint"`
	Count       int       `json:"count"`
	Level       string    `json:"level"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// Store is a queryable source of grouped recurring errors. Rows come
// back ordered by count descending, capped at MaxGroups.
type Store interface {
	QueryRecurringErrors(since time.Time, minCount int) ([]RecurringGroup, error)
}

// UnavailableError reports a log source that could not be read. It
// always carries the path that was attempted.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("log store unavailable at %s: %v", e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
