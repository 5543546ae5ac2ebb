package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every metric in g to a Pushgateway under the given job. One-shot
// runs use it since nothing scrapes them.
func Push(ctx context.Context, gatewayURL, job, instance string, g prometheus.Gatherer) error {
	p := push.New(gatewayURL, job).Gatherer(g)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
