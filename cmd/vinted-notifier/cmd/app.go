package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/donaldgifford/vinted-notifier/internal/config"
	"github.com/donaldgifford/vinted-notifier/internal/engine"
	"github.com/donaldgifford/vinted-notifier/internal/metrics"
	"github.com/donaldgifford/vinted-notifier/internal/notify"
	"github.com/donaldgifford/vinted-notifier/internal/store"
	"github.com/donaldgifford/vinted-notifier/internal/telemetry"
	"github.com/donaldgifford/vinted-notifier/internal/vinted"
	"github.com/donaldgifford/vinted-notifier/pkg/logger"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

const (
	pushTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// app holds the wired components shared by run and watch.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *store.FileStore
	engine   *engine.Engine
	shutdown telemetry.ShutdownFunc
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	format := cfg.Logging.Format
	if f := viper.GetString("log-format"); f != "" {
		format = f
	}
	return logger.New(logger.EffectiveLevel(cfg.Logging.Level, viper.GetBool("verbose")), format)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
	}, log)
	if err != nil {
		return nil, err
	}

	rules := cfg.Rules()
	logSearchURLs(log, rules)

	st := store.NewFileStore(cfg.StateFile, store.WithLogger(log))
	eng := engine.NewEngine(st, newSource(cfg, log), newDispatcher(cfg, log), rules,
		engine.WithLogger(log),
		engine.WithWorkers(cfg.Workers),
		engine.WithPriceDropEpsilon(cfg.Epsilon()),
		engine.WithMaxSeenPerRule(cfg.MaxSeenIDsPerSearch),
		engine.WithRunTimeout(cfg.RunTimeout),
	)

	return &app{cfg: cfg, log: log, store: st, engine: eng, shutdown: shutdown}, nil
}

func newSource(cfg *config.Config, log *slog.Logger) *vinted.Source {
	f := cfg.Fetch
	hc := telemetry.HTTPClient(f.Timeout)

	sessOpts := []vinted.SessionOption{
		vinted.WithSessionHTTPClient(hc),
		vinted.WithSessionTTL(f.SessionTTL),
		vinted.WithSessionUserAgent(f.UserAgent),
	}
	catOpts := []vinted.CatalogOption{
		vinted.WithHTTPClient(hc),
		vinted.WithPacer(vinted.NewPacer(f.RequestSpacing, vinted.WithJitter(f.RequestJitter))),
		vinted.WithUserAgent(f.UserAgent),
		vinted.WithMaxRetries(f.MaxRetries),
		vinted.WithCatalogLogger(log),
	}
	if f.BaseURL != "" {
		sessOpts = append(sessOpts, vinted.WithSessionOrigin(f.BaseURL))
		catOpts = append(catOpts, vinted.WithOrigin(f.BaseURL))
	}

	catalog := vinted.NewCatalogClient(vinted.NewCookieSession(sessOpts...), catOpts...)
	return vinted.NewSource(catalog,
		vinted.WithPerPage(f.PerPage),
		vinted.WithMaxPages(f.MaxPages),
		vinted.WithSourceLogger(log),
	)
}

func newDispatcher(cfg *config.Config, log *slog.Logger) *notify.Dispatcher {
	// Attempts are bounded by the per-attempt timeout.
	return notify.NewDispatcher(
		notify.WithHTTPClient(telemetry.HTTPClient(0)),
		notify.WithTimeout(cfg.Dispatch.Timeout),
		notify.WithMaxAttempts(cfg.Dispatch.MaxAttempts),
		notify.WithLogger(log),
	)
}

func logSearchURLs(log *slog.Logger, rules []domain.Rule) {
	for i := range rules {
		for _, locale := range rules[i].Locales {
			log.Debug("search configured",
				"rule", rules[i].Name,
				"locale", locale,
				"enabled", rules[i].Enabled,
				"url", vinted.BuildSearchURL(rules[i].Keywords, locale),
			)
		}
	}
}

// pushMetrics sends the process metrics to the Pushgateway when one is
// configured. Failures are logged and never fail the run.
func (a *app) pushMetrics(ctx context.Context) {
	url := a.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	instance, _ := os.Hostname()
	if err := metrics.Push(ctx, url, a.cfg.Metrics.JobName, instance, prometheus.DefaultGatherer); err != nil {
		a.log.Warn("metrics push failed", "error", err)
		return
	}
	a.log.Debug("metrics pushed", "gateway", url, "job", a.cfg.Metrics.JobName)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn("telemetry shutdown failed", "error", err)
	}
}
