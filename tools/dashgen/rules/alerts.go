package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// vinted-notifier operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "vn-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "vn-alerts",
					Rules: []Rule{
						{
							Alert: "VintedNotifierDown",
							Expr:  `absent(up{job="vinted-notifier"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Vinted Notifier is down",
								"description": "The vinted-notifier job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "VintedNotifierNotReady",
							Expr:  `vn_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Vinted Notifier readiness check is failing",
								"description": "The last cycle could not read or write the state file.",
							},
						},
						{
							Alert: "VintedNotifierStalled",
							Expr:  `time() - vn_last_cycle_timestamp_seconds > 3600`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "No polling cycle has finished in the last hour",
								"description": "The scheduler has not completed a cycle for more than an hour.",
							},
						},
						{
							Alert: "VintedNotifierHighErrorRate",
							Expr:  `vn:http_errors:rate5m / vn:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Vinted Notifier",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "VintedNotifierUnitErrors",
							Expr:  `vn:unit_errors:rate5m > 0`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Searches are failing",
								"description": "One or more rule and locale searches have been erroring for more than 15 minutes.",
							},
						},
						{
							Alert: "VintedNotifierRateLimited",
							Expr:  `vn:vinted_rate_limited:rate5m / vn:vinted_requests:rate5m > 0.25`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Vinted is throttling catalog requests",
								"description": "More than 25% of catalog requests were answered with 429 over the last 15 minutes.",
							},
						},
						{
							Alert: "VintedNotifierNotificationFailures",
							Expr:  `increase(vn_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more Slack or Discord webhook deliveries failed after all retries.",
							},
						},
						{
							Alert: "VintedNotifierStateSaveErrors",
							Expr:  `increase(vn_state_save_errors_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "State file could not be written",
								"description": "Seen listings and cooldowns are not being persisted. Duplicate notifications will follow a restart.",
							},
						},
					},
				},
			},
		},
	}
}
