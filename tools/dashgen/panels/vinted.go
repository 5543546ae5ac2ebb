package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// VintedRequestRate returns a timeseries panel showing catalog requests per
// second by response status.
func VintedRequestRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Catalog Requests").
		Description("Vinted catalog search requests per second by status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (status) (rate(vn_vinted_requests_total{job="vinted-notifier"}[5m]))`,
			"{{status}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(ListLegend()).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// VintedLatency returns a timeseries panel showing p95 catalog request
// latency per locale.
func VintedLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Catalog Latency (p95)").
		Description("95th percentile catalog request duration by locale").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(vn_vinted_request_duration_seconds_bucket{job="vinted-notifier"}[5m])) by (le, locale))`,
			"{{locale}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// Throttling returns a timeseries panel showing rate-limited responses and
// retries.
func Throttling() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Throttling").
		Description("429 responses and request retries per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`vn:vinted_rate_limited:rate5m * 60`, "rate limited", "A")).
		WithTarget(PromQuery(
			`sum(rate(vn_vinted_retries_total{job="vinted-notifier"}[5m])) * 60`,
			"retries", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SessionRefreshes returns a stat panel counting session cookie refreshes
// in the past day.
func SessionRefreshes() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Session Refreshes (24h)").
		Description("Times the anonymous session cookie was fetched again after expiring").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`sum(increase(vn_vinted_session_refreshes_total{job="vinted-notifier"}[24h]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(10, 50)).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}
