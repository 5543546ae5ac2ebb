// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/vinted-notifier/tools/dashgen/panels"
)

// BuildOverview constructs the Vinted Notifier overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Vinted Notifier Overview").
		Uid("vn-overview").
		Tags([]string{"vn", "vinted-notifier"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.LastCycleStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Cycles.
	b.WithRow(dashboard.NewRowBuilder("Cycles").
		WithPanel(panels.CycleResults()).
		WithPanel(panels.UnitErrors()).
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.FailedCycles()))

	// Row 4: Vinted API.
	b.WithRow(dashboard.NewRowBuilder("Vinted API").
		WithPanel(panels.VintedRequestRate()).
		WithPanel(panels.VintedLatency()).
		WithPanel(panels.Throttling()).
		WithPanel(panels.SessionRefreshes()))

	// Row 5: Listings.
	b.WithRow(dashboard.NewRowBuilder("Listings").
		WithPanel(panels.ListingsFunnel()).
		WithPanel(panels.Deferred()).
		WithPanel(panels.FilterStages()).
		WithPanel(panels.Classification()))

	// Row 6: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsRate()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationRetries()).
		WithPanel(panels.NotificationFailures()))

	// Row 7: State.
	b.WithRow(dashboard.NewRowBuilder("State").
		WithPanel(panels.StateRecords()).
		WithPanel(panels.StateEvictions()).
		WithPanel(panels.StateSaveErrors()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
