package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// stateVersion is written into every saved file. Version 1 files (a flat
// list of seen ids per search) are migrated on load.
const stateVersion = 2

// legacyTimeLayouts parse the naive UTC timestamps of version 1 files.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

type ruleState struct {
	LastDispatchAt *time.Time                   `json:"last_dispatch_at,omitempty"`
	Order          []string                     `json:"order"`
	Seen           map[string]domain.SeenRecord `json:"seen"`
}

type stateFile struct {
	Version  int                     `json:"version"`
	Rules    map[string]*ruleState   `json:"rules"`
	Searches map[string]legacySearch `json:"searches,omitempty"`
}

type legacySearch struct {
	SeenIDs              []string `json:"seen_ids"`
	LastNotificationTime *string  `json:"last_notification_time"`
}

// FileStore keeps all state in memory and persists it as one JSON document.
// A RWMutex gives readers concurrent access and serializes every write.
type FileStore struct {
	path string
	log  *slog.Logger
	now  func() time.Time

	mu    sync.RWMutex
	rules map[string]*ruleState
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithLogger sets the logger for the store.
func WithLogger(l *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.log = l
	}
}

// WithClock overrides the clock used when migrating legacy files.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore returns a store backed by the file at path. Nothing is read
// until Load is called.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path:  path,
		log:   slog.Default(),
		now:   time.Now,
		rules: make(map[string]*ruleState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load replaces the in-memory state with the file contents. A missing file
// yields empty state. An unreadable or malformed file is an error so that a
// later Save never overwrites history it could not parse.
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("no state file found, starting fresh", "path", s.path)
		s.mu.Lock()
		s.rules = make(map[string]*ruleState)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return &IOError{Op: "load", Path: s.path, Err: err}
	}

	var doc stateFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return &IOError{Op: "load", Path: s.path, Err: fmt.Errorf("decoding state: %w", err)}
	}

	rules := doc.Rules
	if rules == nil {
		rules = make(map[string]*ruleState)
	}
	if doc.Version < stateVersion && len(doc.Searches) > 0 {
		s.migrateLegacy(rules, doc.Searches)
	}
	for _, rs := range rules {
		normalize(rs)
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.log.Info("loaded state", "path", s.path, "rules", len(rules))
	return nil
}

func (s *FileStore) migrateLegacy(rules map[string]*ruleState, searches map[string]legacySearch) {
	now := s.now().UTC()
	for name, ls := range searches {
		if _, ok := rules[name]; ok {
			continue
		}
		rs := &ruleState{Seen: make(map[string]domain.SeenRecord, len(ls.SeenIDs))}
		for _, id := range ls.SeenIDs {
			if _, dup := rs.Seen[id]; dup {
				continue
			}
			// The price is unknown, so a zero last price never triggers a
			// price drop.
			rs.Seen[id] = domain.SeenRecord{FirstSeen: now, LastNotifiedAt: now}
			rs.Order = append(rs.Order, id)
		}
		if ls.LastNotificationTime != nil {
			if t, ok := parseLegacyTime(*ls.LastNotificationTime); ok {
				rs.LastDispatchAt = &t
			}
		}
		rules[name] = rs
	}
	s.log.Info("migrated legacy state", "path", s.path, "searches", len(searches))
}

func parseLegacyTime(v string) (time.Time, bool) {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalize makes Order list exactly the keys of Seen, oldest first.
func normalize(rs *ruleState) {
	if rs.Seen == nil {
		rs.Seen = make(map[string]domain.SeenRecord)
	}
	consistent := len(rs.Order) == len(rs.Seen)
	if consistent {
		seen := make(map[string]struct{}, len(rs.Order))
		for _, id := range rs.Order {
			_, inSeen := rs.Seen[id]
			_, dup := seen[id]
			if !inSeen || dup {
				consistent = false
				break
			}
			seen[id] = struct{}{}
		}
	}
	if consistent {
		return
	}

	order := make([]string, 0, len(rs.Seen))
	for id := range rs.Seen {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := rs.Seen[order[i]].FirstSeen, rs.Seen[order[j]].FirstSeen
		if a.Equal(b) {
			return order[i] < order[j]
		}
		return a.Before(b)
	})
	rs.Order = order
}

// Save writes the state atomically: a temp file in the same directory is
// fsynced and renamed over the target.
func (s *FileStore) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(stateFile{Version: stateVersion, Rules: s.rules}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return &IOError{Op: "save", Path: s.path, Err: fmt.Errorf("encoding state: %w", err)}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "save", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return &IOError{Op: "save", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return &IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // sync error takes precedence
		return &IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &IOError{Op: "save", Path: s.path, Err: err}
	}

	s.log.Debug("saved state", "path", s.path, "bytes", len(data))
	return nil
}

// Lookup returns the record for a listing under a rule.
func (s *FileStore) Lookup(rule, listingID string) (domain.SeenRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.rules[rule]
	if !ok {
		return domain.SeenRecord{}, false
	}
	rec, ok := rs.Seen[listingID]
	return rec, ok
}

// Upsert creates or updates a record. An existing record keeps its
// FirstSeen and its position in the eviction order.
func (s *FileStore) Upsert(rule, listingID string, rec domain.SeenRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.ruleLocked(rule)
	if prev, ok := rs.Seen[listingID]; ok {
		rec.FirstSeen = prev.FirstSeen
		rs.Seen[listingID] = rec
		return
	}
	rs.Seen[listingID] = rec
	rs.Order = append(rs.Order, listingID)
}

// Evict drops the oldest-first-seen records until at most maxRecords remain
// and returns how many were removed.
func (s *FileStore) Evict(rule string, maxRecords int) int {
	if maxRecords < 0 {
		maxRecords = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs, ok := s.rules[rule]
	if !ok || len(rs.Order) <= maxRecords {
		return 0
	}

	n := len(rs.Order) - maxRecords
	for _, id := range rs.Order[:n] {
		delete(rs.Seen, id)
	}
	rs.Order = slices.Clone(rs.Order[n:])
	return n
}

// Len returns the number of records held for a rule.
func (s *FileStore) Len(rule string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rs, ok := s.rules[rule]; ok {
		return len(rs.Seen)
	}
	return 0
}

// LastDispatch returns when a rule last delivered a notification.
func (s *FileStore) LastDispatch(rule string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.rules[rule]
	if !ok || rs.LastDispatchAt == nil {
		return time.Time{}, false
	}
	return *rs.LastDispatchAt, true
}

// SetLastDispatch records a dispatch for a rule.
func (s *FileStore) SetLastDispatch(rule string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := at.UTC()
	s.ruleLocked(rule).LastDispatchAt = &t
}

// Summary returns per-rule counts sorted by rule name.
func (s *FileStore) Summary() []RuleSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RuleSummary, 0, len(s.rules))
	for name, rs := range s.rules {
		sum := RuleSummary{Rule: name, Records: len(rs.Seen)}
		if rs.LastDispatchAt != nil {
			t := *rs.LastDispatchAt
			sum.LastDispatchAt = &t
		}
		for _, rec := range rs.Seen {
			first := rec.FirstSeen
			if sum.OldestSeen == nil || first.Before(*sum.OldestSeen) {
				sum.OldestSeen = &first
			}
			if sum.NewestSeen == nil || first.After(*sum.NewestSeen) {
				sum.NewestSeen = &first
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rule < out[j].Rule })
	return out
}

func (s *FileStore) ruleLocked(rule string) *ruleState {
	rs, ok := s.rules[rule]
	if !ok {
		rs = &ruleState{Seen: make(map[string]domain.SeenRecord)}
		s.rules[rule] = rs
	}
	return rs
}
