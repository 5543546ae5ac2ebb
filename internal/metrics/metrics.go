// Package metrics defines Prometheus metrics for vinted-notifier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vn"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe succeeded, 0 otherwise.",
	})
)

// Cycle metrics.
var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Total number of polling cycles by result.",
	}, []string{"result"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of polling cycles in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	LastCycleTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_cycle_timestamp_seconds",
		Help:      "Unix time the last polling cycle finished.",
	})

	UnitErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_errors_total",
		Help:      "Total number of failed rule/locale fetches by error kind.",
	}, []string{"rule", "locale", "kind"})
)

// Listing pipeline metrics.
var (
	ListingsFoundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_found_total",
		Help:      "Total number of listings returned by the marketplace.",
	}, []string{"rule", "locale"})

	ListingsFilteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_filtered_total",
		Help:      "Total number of listings rejected by a rule filter stage.",
	}, []string{"rule", "stage"})

	ListingsClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_classified_total",
		Help:      "Total number of filtered listings by dedup verdict.",
	}, []string{"rule", "kind"})

	ListingsDeferredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_deferred_total",
		Help:      "Total number of matches deferred by an active cooldown.",
	}, []string{"rule"})
)

// Marketplace API metrics.
var (
	VintedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vinted_requests_total",
		Help:      "Total number of catalog API requests by status code.",
	}, []string{"locale", "status"})

	VintedRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vinted_request_duration_seconds",
		Help:      "Duration of catalog API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"locale"})

	VintedRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vinted_retries_total",
		Help:      "Total number of retried catalog API requests.",
	}, []string{"locale"})

	VintedRateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vinted_rate_limited_total",
		Help:      "Total number of throttled catalog API responses.",
	}, []string{"locale"})

	VintedSessionRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vinted_session_refreshes_total",
		Help:      "Total number of session cookie refreshes.",
	}, []string{"locale"})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of webhook payloads delivered.",
	}, []string{"platform"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of webhook payloads that failed after retries.",
	}, []string{"platform"})

	NotificationRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_retries_total",
		Help:      "Total number of retried webhook deliveries.",
	}, []string{"platform"})

	NotificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Time to deliver one webhook payload, retries included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"platform"})

	ListingsNotifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_notified_total",
		Help:      "Total number of listings included in a confirmed delivery.",
	}, []string{"rule", "kind"})
)

// State metrics.
var (
	StateRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "state_records",
		Help:      "Number of seen records held per rule.",
	}, []string{"rule"})

	StateEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_evictions_total",
		Help:      "Total number of seen records evicted by the per-rule cap.",
	}, []string{"rule"})

	StateSaveErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_save_errors_total",
		Help:      "Total number of failed state file writes.",
	})
)
