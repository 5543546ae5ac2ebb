package client

import (
	"context"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
	"github.com/donaldgifford/vinted-notifier/internal/store"
)

// State returns the per-rule state summary held by the server.
func (c *Client) State(ctx context.Context) ([]store.RuleSummary, error) {
	var out struct {
		Rules []store.RuleSummary `json:"rules"`
	}
	if err := c.get(ctx, "/api/v1/state", &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

// Rules returns the rules the server is polling.
func (c *Client) Rules(ctx context.Context) ([]handlers.RuleView, error) {
	var out struct {
		Rules []handlers.RuleView `json:"rules"`
	}
	if err := c.get(ctx, "/api/v1/rules", &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}
