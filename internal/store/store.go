// Package store defines the state abstraction for vinted-notifier.
// Dedup and cooldown logic depend on the Store interface, never on the
// concrete file implementation.
package store

import (
	"fmt"
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// Store is the per-rule memory of notified listings and dispatch times.
// Load is called once before a cycle and Save once after it; every method
// in between is safe for concurrent use.
type Store interface {
	Load() error
	Save() error

	// Seen records
	Lookup(rule, listingID string) (domain.SeenRecord, bool)
	Upsert(rule, listingID string, rec domain.SeenRecord)
	Evict(rule string, maxRecords int) int
	Len(rule string) int

	// Cooldown
	LastDispatch(rule string) (time.Time, bool)
	SetLastDispatch(rule string, at time.Time)

	Summary() []RuleSummary
}

// RuleSummary is a read-only view of one rule's state.
type RuleSummary struct {
	Rule           string     `json:"rule"`
	Records        int        `json:"records"`
	LastDispatchAt *time.Time `json:"last_dispatch_at,omitempty"`
	OldestSeen     *time.Time `json:"oldest_seen,omitempty"`
	NewestSeen     *time.Time `json:"newest_seen,omitempty"`
}

// IOError reports a state file that could not be read or written.
type IOError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("state %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
