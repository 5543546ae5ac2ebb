package client

import (
	"context"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
)

// Run triggers a cycle on the server and waits for its report.
func (c *Client) Run(ctx context.Context, dryRun bool) (*handlers.RunReport, error) {
	path := "/api/v1/run"
	if dryRun {
		path += "?dry_run=true"
	}
	var report handlers.RunReport
	if err := c.post(ctx, path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// LastRun returns the report of the most recent finished cycle.
func (c *Client) LastRun(ctx context.Context) (*handlers.RunReport, error) {
	var report handlers.RunReport
	if err := c.get(ctx, "/api/v1/runs/last", &report); err != nil {
		return nil, err
	}
	return &report, nil
}
