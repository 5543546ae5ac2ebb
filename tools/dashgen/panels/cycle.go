package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CycleResults returns a timeseries panel showing finished cycles per hour
// split by result.
func CycleResults() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycles / hour").
		Description("Finished polling cycles per hour by result (success, partial, failed, cancelled)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (result) (increase(vn_cycles_total{job="vinted-notifier"}[1h]))`,
			"{{result}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(ListLegend()).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// UnitErrors returns a timeseries panel showing failed rule/locale fetch
// units per minute.
func UnitErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Unit Errors / min").
		Description("Rule and locale fetch units that errored, per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`vn:unit_errors:rate5m * 60`, "errors/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CycleDuration returns a timeseries panel showing the p95 cycle duration.
func CycleDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycle Duration (p95)").
		Description("95th percentile polling cycle duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(vn_cycle_duration_seconds_bucket{job="vinted-notifier"}[15m])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FailedCycles returns a stat panel counting failed cycles in the past day.
func FailedCycles() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Failed Cycles (24h)").
		Description("Cycles aborted by a state file error in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`sum(increase(vn_cycles_total{job="vinted-notifier", result="failed"}[24h]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}
