package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner runs one polling cycle.
type Runner interface {
	RunCycle(ctx context.Context, dryRun bool) (*RunMetrics, error)
}

// Scheduler triggers polling cycles on a fixed interval. A tick that fires
// while the previous cycle is still running is skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	dryRun   bool
	interval time.Duration
	entryID  cron.EntryID
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new Scheduler that runs cycles every interval.
func NewScheduler(r Runner, interval time.Duration, dryRun bool, log *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     c,
		runner:   r,
		dryRun:   dryRun,
		interval: interval,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	id, err := c.AddFunc("@every "+interval.String(), s.runCycle)
	if err != nil {
		cancel()
		return nil, err
	}
	s.entryID = id

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "interval", s.interval)
}

// Stop cancels an in-flight cycle and returns a context that is done once
// it has returned. The cancelled cycle still saves delivered state.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	s.cancel()
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Next returns when the next cycle is due, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// RunNow runs one cycle on the calling goroutine, outside the cron
// schedule. It waits for a cycle already in progress.
func (s *Scheduler) RunNow() {
	s.runCycle()
}

func (s *Scheduler) runCycle() {
	s.log.Info("scheduled cycle starting")
	rm, err := s.runner.RunCycle(s.ctx, s.dryRun)
	if err != nil {
		s.log.Error("scheduled cycle failed", "error", err)
		return
	}
	s.log.Info("scheduled cycle finished", "run_id", rm.RunID, "result", rm.Result(), "next", s.Next())
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
