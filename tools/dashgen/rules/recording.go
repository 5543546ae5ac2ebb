package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "vn-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "vn-recording",
					Rules: []Rule{
						{
							Record: "vn:http_requests:rate5m",
							Expr:   `sum(rate(vn_http_requests_total[5m]))`,
						},
						{
							Record: "vn:http_errors:rate5m",
							Expr:   `sum(rate(vn_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "vn:listings_found:rate5m",
							Expr:   `sum(rate(vn_listings_found_total[5m]))`,
						},
						{
							Record: "vn:listings_notified:rate5m",
							Expr:   `sum(rate(vn_listings_notified_total[5m]))`,
						},
						{
							Record: "vn:unit_errors:rate5m",
							Expr:   `sum(rate(vn_unit_errors_total[5m]))`,
						},
						{
							Record: "vn:vinted_requests:rate5m",
							Expr:   `sum(rate(vn_vinted_requests_total[5m]))`,
						},
						{
							Record: "vn:vinted_rate_limited:rate5m",
							Expr:   `sum(rate(vn_vinted_rate_limited_total[5m]))`,
						},
						{
							Record: "vn:notification_failures:rate5m",
							Expr:   `sum(rate(vn_notification_failures_total[5m]))`,
						},
						{
							Record: "vn:notification_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum(rate(vn_notification_duration_seconds_bucket[5m])) by (le, platform))`,
						},
					},
				},
			},
		},
	}
}
