// Package engine runs polling cycles: it fetches listings for every enabled
// rule and locale, filters and classifies them, applies cooldowns, dispatches
// notifications and persists what was delivered.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/vinted-notifier/internal/filter"
	"github.com/donaldgifford/vinted-notifier/internal/metrics"
	"github.com/donaldgifford/vinted-notifier/internal/notify"
	"github.com/donaldgifford/vinted-notifier/internal/store"
	"github.com/donaldgifford/vinted-notifier/internal/vinted"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

const (
	defaultWorkers    = 4
	defaultEpsilon    = 0.01
	defaultMaxSeen    = 1000
	defaultRunTimeout = 10 * time.Minute
)

var tracer = otel.Tracer("github.com/donaldgifford/vinted-notifier/internal/engine")

// Engine orchestrates one polling cycle at a time.
type Engine struct {
	store  store.Store
	source vinted.ListingSource
	sender notify.Sender
	rules  []domain.Rule
	log    *slog.Logger

	dedup *Deduper
	gate  *Gate

	workers    int
	epsilon    float64
	maxSeen    int
	runTimeout time.Duration
	now        func() time.Time

	runMu sync.Mutex // one cycle at a time

	lastMu sync.RWMutex
	last   *RunMetrics
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	src vinted.ListingSource,
	sender notify.Sender,
	rules []domain.Rule,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:      s,
		source:     src,
		sender:     sender,
		rules:      rules,
		log:        slog.Default(),
		workers:    defaultWorkers,
		epsilon:    defaultEpsilon,
		maxSeen:    defaultMaxSeen,
		runTimeout: defaultRunTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.dedup = NewDeduper(s, eng.epsilon)
	eng.gate = NewGate(s)
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithWorkers caps how many rule and locale units run concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithPriceDropEpsilon sets the minimum decrease that counts as a price drop.
func WithPriceDropEpsilon(eps float64) EngineOption {
	return func(e *Engine) {
		e.epsilon = eps
	}
}

// WithMaxSeenPerRule caps the seen records kept for each rule.
func WithMaxSeenPerRule(n int) EngineOption {
	return func(e *Engine) {
		e.maxSeen = n
	}
}

// WithRunTimeout sets the overall deadline of a cycle. Zero disables it.
func WithRunTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.runTimeout = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Rules returns the configured rules.
func (eng *Engine) Rules() []domain.Rule {
	return eng.rules
}

// LastRun returns the metrics of the most recent finished cycle, or nil.
func (eng *Engine) LastRun() *RunMetrics {
	eng.lastMu.RLock()
	defer eng.lastMu.RUnlock()
	return eng.last
}

// unit is one rule searched in one locale.
type unit struct {
	rule   *domain.Rule
	locale string
	index  int // position of the locale in the rule
}

// RunCycle runs one polling cycle. Per-unit and per-delivery failures are
// counted in the returned metrics and never abort the cycle. The error is
// non-nil only when state could not be loaded or saved. In a dry run
// payloads are logged instead of sent and state is left untouched.
func (eng *Engine) RunCycle(ctx context.Context, dryRun bool) (*RunMetrics, error) {
	eng.runMu.Lock()
	defer eng.runMu.Unlock()

	rm := newRunMetrics(dryRun, eng.now())
	log := eng.log.With("run_id", rm.RunID)

	ctx, span := tracer.Start(ctx, "engine.RunCycle", trace.WithAttributes(
		attribute.String("run_id", rm.RunID),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()

	if eng.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eng.runTimeout)
		defer cancel()
	}

	log.Info("cycle starting", "rules", len(eng.rules), "dry_run", dryRun)

	if err := eng.store.Load(); err != nil {
		err = fmt.Errorf("loading state: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "state load failed")
		eng.complete(log, rm, false, err)
		return rm, err
	}

	sender := eng.sender
	if dryRun {
		sender = notify.NewNoOpSender(log)
	}

	rules := eng.enabledRules(log, rm)
	found := eng.collect(ctx, log, rules, rm)
	eng.dispatchAll(ctx, log, rules, found, sender, dryRun, rm)

	var saveErr error
	if !dryRun {
		// Saved even when ctx is done: delivered listings must be recorded.
		if err := eng.store.Save(); err != nil {
			metrics.StateSaveErrorsTotal.Inc()
			saveErr = fmt.Errorf("saving state: %w", err)
			span.RecordError(saveErr)
			span.SetStatus(codes.Error, "state save failed")
		}
	}

	eng.complete(log, rm, ctx.Err() != nil, saveErr)
	return rm, saveErr
}

func (eng *Engine) enabledRules(log *slog.Logger, rm *RunMetrics) []*domain.Rule {
	rules := make([]*domain.Rule, 0, len(eng.rules))
	for i := range eng.rules {
		r := &eng.rules[i]
		if !r.Enabled {
			log.Info("rule disabled, skipping", "rule", r.Name)
			rm.skip(r.Name)
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// collect runs fetch, filter and classify for every unit concurrently and
// returns the candidates per rule, indexed by locale position.
func (eng *Engine) collect(
	ctx context.Context,
	log *slog.Logger,
	rules []*domain.Rule,
	rm *RunMetrics,
) map[string][][]domain.Candidate {
	found := make(map[string][][]domain.Candidate, len(rules))
	var units []unit
	for _, r := range rules {
		found[r.Name] = make([][]domain.Candidate, len(r.Locales))
		for i, locale := range r.Locales {
			units = append(units, unit{rule: r, locale: locale, index: i})
		}
	}

	var g errgroup.Group
	g.SetLimit(eng.workers)
	for _, u := range units {
		// Each goroutine owns one slot of the pre-sized slice.
		slot := found[u.rule.Name]
		g.Go(func() error {
			slot[u.index] = eng.runUnit(ctx, log, u, rm)
			return nil
		})
	}
	_ = g.Wait()

	return found
}

func (eng *Engine) runUnit(ctx context.Context, log *slog.Logger, u unit, rm *RunMetrics) []domain.Candidate {
	rule, locale := u.rule.Name, u.locale

	ctx, span := tracer.Start(ctx, "engine.unit", trace.WithAttributes(
		attribute.String("rule", rule),
		attribute.String("locale", locale),
	))
	defer span.End()

	// Nothing is counted until the fetch finishes cleanly, so a failed unit
	// reports only its error.
	var (
		c          Counts
		out        []domain.Candidate
		filtered   = map[filter.Stage]int{}
		classified = map[domain.MatchKind]int{}
	)

	for l, err := range eng.source.Fetch(ctx, u.rule, locale) {
		if err != nil {
			kind := vinted.Kind(err)
			metrics.UnitErrorsTotal.WithLabelValues(rule, locale, kind).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch failed")
			log.Warn("fetch failed, skipping unit for this cycle",
				"rule", rule,
				"locale", locale,
				"kind", kind,
				"discarded", c.Found,
				"error", err,
			)
			rm.addUnit(rule, locale, Counts{Errored: 1})
			return nil
		}

		c.Found++
		if res := filter.Evaluate(u.rule, &l); !res.Passed {
			c.Filtered++
			filtered[res.Stage]++
			log.Debug("listing filtered",
				"rule", rule,
				"locale", locale,
				"id", l.ID,
				"stage", res.Stage,
				"reason", res.Reason,
			)
			continue
		}

		cls := eng.dedup.Classify(rule, &l)
		classified[cls.Kind]++
		switch cls.Kind {
		case domain.MatchDuplicate:
			c.Duplicate++
			continue
		case domain.MatchNew:
			c.New++
		case domain.MatchPriceDrop:
			c.PriceDrop++
			log.Debug("price drop", "rule", rule, "id", l.ID, "old", cls.OldPrice, "new", l.Price.Amount)
		}
		out = append(out, domain.Candidate{Listing: l, Classification: cls})
	}

	for stage, n := range filtered {
		metrics.ListingsFilteredTotal.WithLabelValues(rule, string(stage)).Add(float64(n))
	}
	for kind, n := range classified {
		metrics.ListingsClassifiedTotal.WithLabelValues(rule, string(kind)).Add(float64(n))
	}
	metrics.ListingsFoundTotal.WithLabelValues(rule, locale).Add(float64(c.Found))
	rm.addUnit(rule, locale, c)
	return out
}

func (eng *Engine) dispatchAll(
	ctx context.Context,
	log *slog.Logger,
	rules []*domain.Rule,
	found map[string][][]domain.Candidate,
	sender notify.Sender,
	dryRun bool,
	rm *RunMetrics,
) {
	var g errgroup.Group
	g.SetLimit(eng.workers)
	for _, r := range rules {
		candidates := merge(found[r.Name])
		g.Go(func() error {
			rm.addRule(r.Name, eng.dispatchRule(ctx, log, r, candidates, sender, dryRun))
			return nil
		})
	}
	_ = g.Wait()
}

// merge flattens per-locale candidates, keeping the first occurrence of each
// listing id.
func merge(perLocale [][]domain.Candidate) []domain.Candidate {
	var out []domain.Candidate
	seen := make(map[string]struct{})
	for _, cs := range perLocale {
		for _, c := range cs {
			if _, dup := seen[c.Listing.ID]; dup {
				continue
			}
			seen[c.Listing.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func (eng *Engine) dispatchRule(
	ctx context.Context,
	log *slog.Logger,
	rule *domain.Rule,
	candidates []domain.Candidate,
	sender notify.Sender,
	dryRun bool,
) Counts {
	var c Counts

	adm := eng.gate.Admit(rule, candidates, eng.now())
	if n := len(adm.Deferred); n > 0 {
		c.Deferred = n
		metrics.ListingsDeferredTotal.WithLabelValues(rule.Name).Add(float64(n))
		log.Info("cooldown active, deferring matches",
			"rule", rule.Name,
			"deferred", n,
			"remaining", adm.Wait.Round(time.Second),
		)
	}

	if len(adm.Batches) > 0 && len(rule.Webhooks) == 0 {
		log.Warn("no webhook configured, matches left for next cycle", "rule", rule.Name, "matches", len(candidates))
		c.Errored++
		adm.Batches = nil
	}

	delivered := false
	for _, batch := range adm.Batches {
		if ctx.Err() != nil {
			log.Warn("cycle cancelled, remaining payloads not sent", "rule", rule.Name)
			break
		}

		if eng.sendBatch(ctx, log, rule, batch, sender, dryRun, &c) {
			delivered = true
		}
	}

	if dryRun {
		return c
	}

	if delivered {
		eng.gate.MarkDispatched(rule.Name, eng.now())
	}

	if evicted := eng.store.Evict(rule.Name, eng.maxSeen); evicted > 0 {
		c.Evicted = evicted
		metrics.StateEvictionsTotal.WithLabelValues(rule.Name).Add(float64(evicted))
		log.Debug("evicted seen records", "rule", rule.Name, "evicted", evicted)
	}
	metrics.StateRecords.WithLabelValues(rule.Name).Set(float64(eng.store.Len(rule.Name)))

	return c
}

// sendBatch delivers one payload to every target and records its listings
// when at least one target acknowledged it.
func (eng *Engine) sendBatch(
	ctx context.Context,
	log *slog.Logger,
	rule *domain.Rule,
	batch []domain.Candidate,
	sender notify.Sender,
	dryRun bool,
	c *Counts,
) bool {
	ctx, span := tracer.Start(ctx, "engine.dispatch", trace.WithAttributes(
		attribute.String("rule", rule.Name),
		attribute.Int("listings", len(batch)),
		attribute.Int("targets", len(rule.Webhooks)),
	))
	defer span.End()

	msg := notify.NewMessage(rule.Name, batch)
	res := notify.Broadcast(ctx, sender, rule.Webhooks, msg)
	c.Payloads++
	c.Errored += res.Failed()

	for _, o := range res.Outcomes {
		if o.Err == nil {
			continue
		}
		var de *notify.DeliveryError
		attempts := 0
		if errors.As(o.Err, &de) {
			attempts = de.Attempts
		}
		span.RecordError(o.Err)
		log.Error("notification delivery failed",
			"rule", rule.Name,
			"platform", o.Target.Platform,
			"listings", len(batch),
			"attempts", attempts,
			"error", o.Err,
		)
	}

	if !res.Confirmed() {
		span.SetStatus(codes.Error, "no target acknowledged")
		return false
	}

	c.Notified += len(batch)
	if len(batch) > 1 {
		c.Batched += len(batch)
	}
	if dryRun {
		return true
	}

	at := eng.now()
	for i := range batch {
		cand := &batch[i]
		eng.store.Upsert(rule.Name, cand.Listing.ID, seenRecord(cand, at))
		metrics.ListingsNotifiedTotal.WithLabelValues(rule.Name, string(cand.Classification.Kind)).Inc()
	}
	log.Info("notification sent",
		"rule", rule.Name,
		"listings", len(batch),
		"headline", msg.Headline(),
		"acked", res.Acked(),
		"failed", res.Failed(),
	)
	return true
}

func (eng *Engine) complete(log *slog.Logger, rm *RunMetrics, cancelled bool, err error) {
	rm.finish(eng.now(), cancelled, err)

	metrics.CyclesTotal.WithLabelValues(rm.Result()).Inc()
	metrics.CycleDuration.Observe(rm.Duration().Seconds())
	metrics.LastCycleTimestamp.SetToCurrentTime()

	rm.LogSummary(log)
	if err != nil {
		log.Error("cycle failed", "error", err)
	}

	eng.lastMu.Lock()
	eng.last = rm
	eng.lastMu.Unlock()
}
