package engine

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Counts are the per-cycle counters for one rule or one rule and locale.
type Counts struct {
	Found     int `json:"found"`
	Filtered  int `json:"filtered"`
	Duplicate int `json:"duplicate"`
	New       int `json:"new"`
	PriceDrop int `json:"price_drop"`
	Deferred  int `json:"deferred"`
	Notified  int `json:"notified"`
	Batched   int `json:"batched"` // listings delivered inside a digest
	Payloads  int `json:"payloads"`
	Errored   int `json:"errored"`
	Evicted   int `json:"evicted"`
}

func (c *Counts) add(o Counts) {
	c.Found += o.Found
	c.Filtered += o.Filtered
	c.Duplicate += o.Duplicate
	c.New += o.New
	c.PriceDrop += o.PriceDrop
	c.Deferred += o.Deferred
	c.Notified += o.Notified
	c.Batched += o.Batched
	c.Payloads += o.Payloads
	c.Errored += o.Errored
	c.Evicted += o.Evicted
}

// RuleMetrics breaks a rule's counts down by locale. Locale entries only
// carry fetch-side counters; dispatch happens per rule.
type RuleMetrics struct {
	Counts
	Locales map[string]*Counts `json:"locales,omitempty"`
}

// RunMetrics summarizes one cycle. It is safe for concurrent updates while
// the cycle runs and read-only once finished.
type RunMetrics struct {
	RunID      string                  `json:"run_id"`
	DryRun     bool                    `json:"dry_run"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Cancelled  bool                    `json:"cancelled"`
	Skipped    []string                `json:"skipped_rules,omitempty"`
	Rules      map[string]*RuleMetrics `json:"rules"`
	Error      string                  `json:"error,omitempty"`

	mu sync.Mutex
}

func newRunMetrics(dryRun bool, now time.Time) *RunMetrics {
	return &RunMetrics{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: now,
		Rules:     make(map[string]*RuleMetrics),
	}
}

func (m *RunMetrics) rule(name string) *RuleMetrics {
	r, ok := m.Rules[name]
	if !ok {
		r = &RuleMetrics{Locales: make(map[string]*Counts)}
		m.Rules[name] = r
	}
	return r
}

func (m *RunMetrics) addUnit(rule, locale string, c Counts) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.rule(rule)
	lc, ok := r.Locales[locale]
	if !ok {
		lc = &Counts{}
		r.Locales[locale] = lc
	}
	lc.add(c)
	r.add(c)
}

func (m *RunMetrics) addRule(rule string, c Counts) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rule(rule).add(c)
}

func (m *RunMetrics) skip(rule string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Skipped = append(m.Skipped, rule)
}

func (m *RunMetrics) finish(now time.Time, cancelled bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FinishedAt = now
	m.Cancelled = cancelled
	if err != nil {
		m.Error = err.Error()
	}
}

// Duration is the wall time of the cycle.
func (m *RunMetrics) Duration() time.Duration {
	return m.FinishedAt.Sub(m.StartedAt)
}

// Totals sums the counters of every rule.
func (m *RunMetrics) Totals() Counts {
	m.mu.Lock()
	defer m.mu.Unlock()

	var t Counts
	for _, r := range m.Rules {
		t.add(r.Counts)
	}
	return t
}

// Rule returns the counters of one rule.
func (m *RunMetrics) Rule(name string) Counts {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.Rules[name]; ok {
		return r.Counts
	}
	return Counts{}
}

// Result labels the cycle outcome for metrics and logs.
func (m *RunMetrics) Result() string {
	switch {
	case m.Error != "":
		return "failed"
	case m.Cancelled:
		return "cancelled"
	case m.Totals().Errored > 0:
		return "partial"
	default:
		return "success"
	}
}

// MarshalJSON adds the totals and duration to the serialized metrics.
func (m *RunMetrics) MarshalJSON() ([]byte, error) {
	totals := m.Totals()

	m.mu.Lock()
	defer m.mu.Unlock()

	type plain RunMetrics
	return json.Marshal(struct {
		*plain
		Totals          Counts  `json:"totals"`
		DurationSeconds float64 `json:"duration_seconds"`
	}{
		plain:           (*plain)(m),
		Totals:          totals,
		DurationSeconds: m.FinishedAt.Sub(m.StartedAt).Seconds(),
	})
}

// LogSummary writes one line per rule and one line with the totals.
func (m *RunMetrics) LogSummary(log *slog.Logger) {
	totals := m.Totals()

	m.mu.Lock()
	names := slices.Sorted(maps.Keys(m.Rules))
	for _, name := range names {
		r := m.Rules[name]
		log.Info("rule summary",
			"rule", name,
			"found", r.Found,
			"filtered", r.Filtered,
			"duplicate", r.Duplicate,
			"new", r.New,
			"price_drop", r.PriceDrop,
			"deferred", r.Deferred,
			"notified", r.Notified,
			"errored", r.Errored,
		)
		for _, locale := range slices.Sorted(maps.Keys(r.Locales)) {
			lc := r.Locales[locale]
			log.Debug("locale summary",
				"rule", name,
				"locale", locale,
				"found", lc.Found,
				"filtered", lc.Filtered,
				"duplicate", lc.Duplicate,
				"errored", lc.Errored,
			)
		}
	}
	m.mu.Unlock()

	log.Info("cycle complete",
		"run_id", m.RunID,
		"dry_run", m.DryRun,
		"result", m.Result(),
		"duration", m.Duration(),
		"found", totals.Found,
		"filtered", totals.Filtered,
		"duplicate", totals.Duplicate,
		"notified", totals.Notified,
		"batched", totals.Batched,
		"deferred", totals.Deferred,
		"errored", totals.Errored,
		"skipped", len(m.Skipped),
	)
}
