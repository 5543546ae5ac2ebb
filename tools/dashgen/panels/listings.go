package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ListingsFunnel returns a timeseries panel showing how many listings enter
// the pipeline and how many end up in a notification.
func ListingsFunnel() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Listings / min").
		Description("Listings found, dropped by filters, and notified per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`vn:listings_found:rate5m * 60`, "found", "A")).
		WithTarget(PromQuery(
			`sum(rate(vn_listings_filtered_total{job="vinted-notifier"}[5m])) * 60`,
			"filtered", "B",
		)).
		WithTarget(PromQuery(`vn:listings_notified:rate5m * 60`, "notified", "C")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// Deferred returns a timeseries panel showing matches held back by the
// cooldown per rule.
func Deferred() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Deferred by Cooldown").
		Description("Matches held back by a rule's cooldown, per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (rule) (increase(vn_listings_deferred_total{job="vinted-notifier"}[1h]))`,
			"{{rule}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(ListLegend()).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// FilterStages returns a bar gauge panel showing which filter stage drops
// the most listings.
func FilterStages() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Filtered by Stage (24h)").
		Description("Listings rejected per filter stage in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (stage) (increase(vn_listings_filtered_total{job="vinted-notifier"}[24h]))`,
			"{{stage}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}

// Classification returns a bar gauge panel showing how listings were
// classified per rule.
func Classification() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Classification (24h)").
		Description("New, price drop and duplicate listings per rule in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (rule, kind) (increase(vn_listings_classified_total{job="vinted-notifier"}[24h]))`,
			"{{rule}} {{kind}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}
