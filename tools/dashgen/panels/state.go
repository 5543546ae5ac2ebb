package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// StateRecords returns a timeseries panel showing remembered listings per
// rule.
func StateRecords() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Seen Listings").
		Description("Listings remembered in the state file per rule").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`vn_state_records{job="vinted-notifier"}`, "{{rule}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// StateEvictions returns a timeseries panel showing seen records evicted by
// the per-rule cap.
func StateEvictions() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Evictions / hour").
		Description("Oldest seen records dropped to stay under the per-rule cap").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (rule) (increase(vn_state_evictions_total{job="vinted-notifier"}[1h]))`,
			"{{rule}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// StateSaveErrors returns a stat panel counting failed state writes in the
// past 24 hours.
func StateSaveErrors() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("State Save Errors (24h)").
		Description("Failed writes of the state file in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(4).
		WithTarget(PromQuery(`increase(vn_state_save_errors_total{job="vinted-notifier"}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}
