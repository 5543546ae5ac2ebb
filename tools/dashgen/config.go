package main

import "errors"

// KnownMetrics is the set of metric names exported by vinted-notifier
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"vn_http_request_duration_seconds": true,
	"vn_http_requests_total":           true,

	// Health metrics.
	"vn_healthz_up": true,
	"vn_readyz_up":  true,

	// Cycle metrics.
	"vn_cycles_total":                 true,
	"vn_cycle_duration_seconds":       true,
	"vn_last_cycle_timestamp_seconds": true,
	"vn_unit_errors_total":            true,

	// Listing pipeline metrics.
	"vn_listings_found_total":      true,
	"vn_listings_filtered_total":   true,
	"vn_listings_classified_total": true,
	"vn_listings_deferred_total":   true,
	"vn_listings_notified_total":   true,

	// Vinted API metrics.
	"vn_vinted_requests_total":           true,
	"vn_vinted_request_duration_seconds": true,
	"vn_vinted_retries_total":            true,
	"vn_vinted_rate_limited_total":       true,
	"vn_vinted_session_refreshes_total":  true,

	// Notification metrics.
	"vn_notifications_sent_total":      true,
	"vn_notification_failures_total":   true,
	"vn_notification_retries_total":    true,
	"vn_notification_duration_seconds": true,

	// State metrics.
	"vn_state_records":           true,
	"vn_state_evictions_total":   true,
	"vn_state_save_errors_total": true,

	// Recording rules.
	"vn:http_requests:rate5m":         true,
	"vn:http_errors:rate5m":           true,
	"vn:listings_found:rate5m":        true,
	"vn:listings_notified:rate5m":     true,
	"vn:unit_errors:rate5m":           true,
	"vn:vinted_requests:rate5m":       true,
	"vn:vinted_rate_limited:rate5m":   true,
	"vn:notification_failures:rate5m": true,
	"vn:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
