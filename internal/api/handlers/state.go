package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vinted-notifier/internal/store"
	"github.com/donaldgifford/vinted-notifier/internal/vinted"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// StateReader exposes the per-rule state summary.
type StateReader interface {
	Summary() []store.RuleSummary
}

// RuleLister exposes the configured rules.
type RuleLister interface {
	Rules() []domain.Rule
}

// StateHandler handles the read-only state and rule routes.
type StateHandler struct {
	state StateReader
	rules RuleLister
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(s StateReader, r RuleLister) *StateHandler {
	return &StateHandler{state: s, rules: r}
}

// StateOutput is the response for GET /api/v1/state.
type StateOutput struct {
	Body struct {
		Rules []store.RuleSummary `json:"rules"`
	}
}

// GetState returns record counts and the last dispatch time of every rule.
func (h *StateHandler) GetState(_ context.Context, _ *struct{}) (*StateOutput, error) {
	out := &StateOutput{}
	out.Body.Rules = h.state.Summary()
	if out.Body.Rules == nil {
		out.Body.Rules = []store.RuleSummary{}
	}
	return out, nil
}

// SearchURL is the human catalog URL of a rule in one locale.
type SearchURL struct {
	Locale string `json:"locale" example:"fr"`
	URL    string `json:"url" example:"https://www.vinted.fr/catalog?search_text=jordan"`
}

// RuleView is the public view of a rule. Webhook URLs are never exposed.
type RuleView struct {
	Name            string            `json:"name" example:"jordan"`
	Enabled         bool              `json:"enabled"`
	Keywords        []string          `json:"keywords"`
	Locales         []string          `json:"locales"`
	CooldownMinutes int               `json:"cooldown_minutes"`
	Batch           bool              `json:"batch"`
	MaxBatchSize    int               `json:"max_batch_size"`
	Platforms       []domain.Platform `json:"platforms"`
	Searches        []SearchURL       `json:"searches"`
}

// RulesOutput is the response for GET /api/v1/rules.
type RulesOutput struct {
	Body struct {
		Rules []RuleView `json:"rules"`
	}
}

// ListRules returns the configured rules with their catalog URLs.
func (h *StateHandler) ListRules(_ context.Context, _ *struct{}) (*RulesOutput, error) {
	rules := h.rules.Rules()
	out := &RulesOutput{}
	out.Body.Rules = make([]RuleView, 0, len(rules))
	for i := range rules {
		out.Body.Rules = append(out.Body.Rules, NewRuleView(&rules[i]))
	}
	return out, nil
}

// NewRuleView builds the public view of r.
func NewRuleView(r *domain.Rule) RuleView {
	v := RuleView{
		Name:            r.Name,
		Enabled:         r.Enabled,
		Keywords:        r.Keywords,
		Locales:         r.Locales,
		CooldownMinutes: int(r.Cooldown / time.Minute),
		Batch:           r.Batch,
		MaxBatchSize:    r.MaxBatchSize,
		Platforms:       make([]domain.Platform, 0, len(r.Webhooks)),
		Searches:        make([]SearchURL, 0, len(r.Locales)),
	}
	for _, w := range r.Webhooks {
		v.Platforms = append(v.Platforms, w.Platform)
	}
	for _, locale := range r.Locales {
		v.Searches = append(v.Searches, SearchURL{
			Locale: locale,
			URL:    vinted.BuildSearchURL(r.Keywords, locale),
		})
	}
	return v
}

// RegisterStateRoutes registers the state and rule routes on the Huma API.
func RegisterStateRoutes(api huma.API, h *StateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get notification state",
		Description: "Returns the number of remembered listings and the last dispatch time per rule.",
		Tags:        []string{"state"},
	}, h.GetState)

	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List rules",
		Description: "Returns the configured search rules and their catalog URLs.",
		Tags:        []string{"state"},
	}, h.ListRules)
}
