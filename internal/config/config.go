// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// ErrInvalidConfig wraps every error that prevents a run from starting.
var ErrInvalidConfig = errors.New("invalid config")

// maxBatchCeiling is the Discord limit of embeds per message.
const maxBatchCeiling = 10

// Environment variables that override values from the config file.
const (
	EnvSlackWebhookURL   = "SLACK_WEBHOOK_URL"
	EnvDiscordWebhookURL = "DISCORD_WEBHOOK_URL"
	EnvStateFile         = "STATE_FILE"
)

// Config is the top-level application configuration.
type Config struct {
	SlackWebhookURL        string          `yaml:"slack_webhook_url"`
	DiscordWebhookURL      string          `yaml:"discord_webhook_url"`
	PollIntervalSeconds    int             `yaml:"poll_interval_seconds"`
	DefaultCooldownMinutes *int            `yaml:"default_cooldown_minutes"`
	StateFile              string          `yaml:"state_file"`
	MaxSeenIDsPerSearch    int             `yaml:"max_seen_ids_per_search"`
	BatchNotifications     bool            `yaml:"batch_notifications"`
	MaxBatchSize           int             `yaml:"max_batch_size"`
	PriceDropEpsilon       *float64        `yaml:"price_drop_epsilon"`
	Workers                int             `yaml:"workers"`
	RunTimeout             time.Duration   `yaml:"run_timeout"`
	Fetch                  FetchConfig     `yaml:"fetch"`
	Dispatch               DispatchConfig  `yaml:"dispatch"`
	Server                 ServerConfig    `yaml:"server"`
	Logging                LoggingConfig   `yaml:"logging"`
	Telemetry              TelemetryConfig `yaml:"telemetry"`
	Metrics                MetricsConfig   `yaml:"metrics"`
	Searches               []SearchConfig  `yaml:"searches"`
}

// SearchConfig is a single search rule as written in the config file.
type SearchConfig struct {
	Name               string           `yaml:"name"`
	Keywords           []string         `yaml:"keywords"`
	IncludeKeywords    []string         `yaml:"include_keywords"`
	ExcludeKeywords    []string         `yaml:"exclude_keywords"`
	PriceMin           *float64         `yaml:"price_min"`
	PriceMax           *float64         `yaml:"price_max"`
	MinSellerRating    *float64         `yaml:"min_seller_rating"`
	MinSellerReviews   *int             `yaml:"min_seller_reviews"`
	Locales            []string         `yaml:"locales"`
	CooldownMinutes    *int             `yaml:"cooldown_minutes"`
	Webhook            string           `yaml:"webhook"`
	Webhooks           []domain.Webhook `yaml:"webhooks"`
	Enabled            *bool            `yaml:"enabled"`
	BatchNotifications *bool            `yaml:"batch_notifications"`
	MaxBatchSize       *int             `yaml:"max_batch_size"`
}

// FetchConfig defines the marketplace client settings.
type FetchConfig struct {
	RequestSpacing time.Duration `yaml:"request_spacing"`
	RequestJitter  time.Duration `yaml:"request_jitter"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	MaxPages       int           `yaml:"max_pages"`
	PerPage        int           `yaml:"per_page"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	UserAgent      string        `yaml:"user_agent"`
	// BaseURL replaces https://www.vinted.<tld> for every locale. Used
	// against the mock server.
	BaseURL string `yaml:"base_url"`
}

// DispatchConfig defines webhook delivery settings.
type DispatchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// ServerConfig defines the HTTP server used by watch mode.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TelemetryConfig defines OpenTelemetry tracing export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// MetricsConfig defines Prometheus export for one-shot runs.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	JobName        string `yaml:"job_name"`
}

// PollInterval returns the watch-mode polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DefaultCooldown returns the global cooldown window. An explicit zero
// disables it.
func (c *Config) DefaultCooldown() time.Duration {
	if c.DefaultCooldownMinutes == nil {
		return 0
	}
	return time.Duration(*c.DefaultCooldownMinutes) * time.Minute
}

// Epsilon returns the minimum drop below the last notified price that
// counts as a price drop.
func (c *Config) Epsilon() float64 {
	if c.PriceDropEpsilon == nil {
		return 0
	}
	return *c.PriceDropEpsilon
}

// GlobalWebhooks returns the default delivery targets.
func (c *Config) GlobalWebhooks() []domain.Webhook {
	var hooks []domain.Webhook
	if c.SlackWebhookURL != "" {
		hooks = append(hooks, domain.Webhook{Platform: domain.PlatformSlack, URL: c.SlackWebhookURL})
	}
	if c.DiscordWebhookURL != "" {
		hooks = append(hooks, domain.Webhook{Platform: domain.PlatformDiscord, URL: c.DiscordWebhookURL})
	}
	return hooks
}

// Load reads and parses a YAML config file, performing environment variable
// substitution, overrides and validation. Every returned error wraps
// ErrInvalidConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("%w: reading config file: %w", ErrInvalidConfig, err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config YAML: %w", ErrInvalidConfig, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(EnvSlackWebhookURL); ok && v != "" {
		cfg.SlackWebhookURL = v
	}
	if v, ok := os.LookupEnv(EnvDiscordWebhookURL); ok && v != "" {
		cfg.DiscordWebhookURL = v
	}
	if v, ok := os.LookupEnv(EnvStateFile); ok && v != "" {
		cfg.StateFile = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.PollIntervalSeconds == 0 {
		cfg.PollIntervalSeconds = 300
	}
	if cfg.DefaultCooldownMinutes == nil {
		minutes := 60
		cfg.DefaultCooldownMinutes = &minutes
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "data/state.json"
	}
	if cfg.MaxSeenIDsPerSearch == 0 {
		cfg.MaxSeenIDsPerSearch = 1000
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 10
	}
	if cfg.PriceDropEpsilon == nil {
		eps := 0.01
		cfg.PriceDropEpsilon = &eps
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	applyFetchDefaults(&cfg.Fetch)
	applyDispatchDefaults(&cfg.Dispatch)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)

	for i := range cfg.Searches {
		if len(cfg.Searches[i].Locales) == 0 {
			cfg.Searches[i].Locales = []string{"en"}
		}
	}
}

func applyFetchDefaults(f *FetchConfig) {
	if f.RequestSpacing == 0 {
		f.RequestSpacing = 2 * time.Second
	}
	if f.Timeout == 0 {
		f.Timeout = 15 * time.Second
	}
	if f.MaxRetries == 0 {
		f.MaxRetries = 3
	}
	if f.MaxPages == 0 {
		f.MaxPages = 1
	}
	if f.PerPage == 0 {
		f.PerPage = 96
	}
	if f.SessionTTL == 0 {
		f.SessionTTL = 30 * time.Minute
	}
	if f.UserAgent == "" {
		f.UserAgent = "Mozilla/5.0 (compatible; vinted-notifier/1.0)"
	}
}

func applyDispatchDefaults(d *DispatchConfig) {
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
	if d.MaxAttempts == 0 {
		d.MaxAttempts = 3
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "vinted-notifier"
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.JobName == "" {
		m.JobName = "vinted-notifier"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.MaxBatchSize < 1 || cfg.MaxBatchSize > maxBatchCeiling {
		errs = append(errs, fmt.Errorf("max_batch_size must be between 1 and %d (got %d)", maxBatchCeiling, cfg.MaxBatchSize))
	}
	if cfg.MaxSeenIDsPerSearch < 1 {
		errs = append(errs, fmt.Errorf("max_seen_ids_per_search must be positive (got %d)", cfg.MaxSeenIDsPerSearch))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive (got %d)", cfg.Workers))
	}
	if cfg.Epsilon() < 0 {
		errs = append(errs, fmt.Errorf("price_drop_epsilon must not be negative"))
	}
	if cfg.DefaultCooldownMinutes != nil && *cfg.DefaultCooldownMinutes < 0 {
		errs = append(errs, fmt.Errorf("default_cooldown_minutes must not be negative"))
	}
	if cfg.SlackWebhookURL != "" {
		errs = append(errs, validateURL("slack_webhook_url", cfg.SlackWebhookURL))
	}
	if cfg.DiscordWebhookURL != "" {
		errs = append(errs, validateURL("discord_webhook_url", cfg.DiscordWebhookURL))
	}

	seen := make(map[string]struct{}, len(cfg.Searches))
	for i := range cfg.Searches {
		s := &cfg.Searches[i]
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("searches[%d].name is required", i))
			continue
		}
		if _, dup := seen[s.Name]; dup {
			errs = append(errs, fmt.Errorf("searches[%d].name %q is not unique", i, s.Name))
		}
		seen[s.Name] = struct{}{}
		errs = append(errs, validateSearch(s)...)
	}

	return errors.Join(errs...)
}

func validateSearch(s *SearchConfig) []error {
	var errs []error
	prefix := fmt.Sprintf("searches[%s]", s.Name)

	if s.PriceMin != nil && s.PriceMax != nil && *s.PriceMin > *s.PriceMax {
		errs = append(errs, fmt.Errorf("%s.price_min must not exceed price_max", prefix))
	}
	if s.MinSellerRating != nil && (*s.MinSellerRating < 0 || *s.MinSellerRating > 5) {
		errs = append(errs, fmt.Errorf("%s.min_seller_rating must be between 0 and 5", prefix))
	}
	if s.CooldownMinutes != nil && *s.CooldownMinutes < 0 {
		errs = append(errs, fmt.Errorf("%s.cooldown_minutes must not be negative", prefix))
	}
	if s.MaxBatchSize != nil && (*s.MaxBatchSize < 1 || *s.MaxBatchSize > maxBatchCeiling) {
		errs = append(errs, fmt.Errorf("%s.max_batch_size must be between 1 and %d", prefix, maxBatchCeiling))
	}
	if s.Webhook != "" {
		if err := validateURL(prefix+".webhook", s.Webhook); err != nil {
			errs = append(errs, err)
		}
	}
	for i, w := range s.Webhooks {
		switch w.Platform {
		case domain.PlatformSlack, domain.PlatformDiscord:
		default:
			errs = append(errs, fmt.Errorf("%s.webhooks[%d].platform must be one of: slack, discord (got %q)", prefix, i, w.Platform))
		}
		if err := validateURL(fmt.Sprintf("%s.webhooks[%d].url", prefix, i), w.URL); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%s must be an absolute http(s) URL", field)
	}
	return nil
}

// Rules converts the configured searches into domain rules with every
// global default resolved.
func (c *Config) Rules() []domain.Rule {
	rules := make([]domain.Rule, 0, len(c.Searches))
	for i := range c.Searches {
		rules = append(rules, c.rule(&c.Searches[i]))
	}
	return rules
}

func (c *Config) rule(s *SearchConfig) domain.Rule {
	r := domain.Rule{
		Name:             s.Name,
		Keywords:         s.Keywords,
		IncludeKeywords:  s.IncludeKeywords,
		ExcludeKeywords:  s.ExcludeKeywords,
		PriceMin:         s.PriceMin,
		PriceMax:         s.PriceMax,
		MinSellerRating:  s.MinSellerRating,
		MinSellerReviews: s.MinSellerReviews,
		Locales:          dedupeLocales(s.Locales),
		Cooldown:         c.DefaultCooldown(),
		Webhooks:         c.GlobalWebhooks(),
		Enabled:          true,
		Batch:            c.BatchNotifications,
		MaxBatchSize:     c.MaxBatchSize,
	}

	if s.Enabled != nil {
		r.Enabled = *s.Enabled
	}
	if s.CooldownMinutes != nil {
		r.Cooldown = time.Duration(*s.CooldownMinutes) * time.Minute
	}
	if s.BatchNotifications != nil {
		r.Batch = *s.BatchNotifications
	}
	if s.MaxBatchSize != nil {
		r.MaxBatchSize = *s.MaxBatchSize
	}

	// A per-rule webhook replaces the global targets entirely.
	if override := ruleWebhooks(s); len(override) > 0 {
		r.Webhooks = override
	}

	return r
}

func ruleWebhooks(s *SearchConfig) []domain.Webhook {
	hooks := make([]domain.Webhook, 0, len(s.Webhooks)+1)
	if s.Webhook != "" {
		hooks = append(hooks, domain.Webhook{Platform: DetectPlatform(s.Webhook), URL: s.Webhook})
	}
	return append(hooks, s.Webhooks...)
}

// DetectPlatform guesses the platform of a bare webhook URL. Discord hosts
// are recognized; anything else is treated as Slack-compatible.
func DetectPlatform(raw string) domain.Platform {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.PlatformSlack
	}
	host := strings.ToLower(u.Hostname())
	if host == "discord.com" || host == "discordapp.com" || strings.HasSuffix(host, ".discord.com") {
		return domain.PlatformDiscord
	}
	return domain.PlatformSlack
}

func dedupeLocales(locales []string) []string {
	out := make([]string, 0, len(locales))
	seen := make(map[string]struct{}, len(locales))
	for _, l := range locales {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
