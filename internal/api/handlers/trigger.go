package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vinted-notifier/internal/engine"
)

// RunHandler handles manual cycle triggers.
type RunHandler struct {
	runner engine.Runner
	runs   RunReporter
}

// NewRunHandler creates a RunHandler.
func NewRunHandler(runner engine.Runner, runs RunReporter) *RunHandler {
	return &RunHandler{runner: runner, runs: runs}
}

// RunInput is the request for POST /api/v1/run.
type RunInput struct {
	DryRun bool `query:"dry_run" doc:"Log payloads instead of sending them and leave state untouched"`
}

// RunReport is the API view of one finished cycle.
type RunReport struct {
	RunID           string                         `json:"run_id" format:"uuid"`
	DryRun          bool                           `json:"dry_run"`
	Result          string                         `json:"result" enum:"success,partial,cancelled,failed"`
	StartedAt       time.Time                      `json:"started_at"`
	FinishedAt      time.Time                      `json:"finished_at"`
	DurationSeconds float64                        `json:"duration_seconds"`
	Skipped         []string                       `json:"skipped_rules,omitempty"`
	Error           string                         `json:"error,omitempty"`
	Totals          engine.Counts                  `json:"totals"`
	Rules           map[string]*engine.RuleMetrics `json:"rules"`
}

// NewRunReport builds the API view of a finished cycle.
func NewRunReport(rm *engine.RunMetrics) *RunReport {
	return &RunReport{
		RunID:           rm.RunID,
		DryRun:          rm.DryRun,
		Result:          rm.Result(),
		StartedAt:       rm.StartedAt,
		FinishedAt:      rm.FinishedAt,
		DurationSeconds: rm.Duration().Seconds(),
		Skipped:         rm.Skipped,
		Error:           rm.Error,
		Totals:          rm.Totals(),
		Rules:           rm.Rules,
	}
}

// RunOutput carries the report of one cycle.
type RunOutput struct {
	Body *RunReport
}

// Run executes one cycle and returns its metrics. The cycle keeps running
// if the client disconnects.
func (h *RunHandler) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	rm, err := h.runner.RunCycle(context.WithoutCancel(ctx), input.DryRun)
	if err != nil {
		return nil, huma.Error500InternalServerError("cycle failed", err)
	}
	return &RunOutput{Body: NewRunReport(rm)}, nil
}

// LastRun returns the metrics of the most recent finished cycle.
func (h *RunHandler) LastRun(_ context.Context, _ *struct{}) (*RunOutput, error) {
	rm := h.runs.LastRun()
	if rm == nil {
		return nil, huma.Error404NotFound("no cycle has finished yet")
	}
	return &RunOutput{Body: NewRunReport(rm)}, nil
}

// RegisterRunRoutes registers the cycle routes on the Huma API.
func RegisterRunRoutes(api huma.API, h *RunHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/run",
		Summary:     "Run a polling cycle",
		Description: "Runs one cycle immediately, waiting for any cycle in progress to finish first.",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Run)

	huma.Register(api, huma.Operation{
		OperationID: "get-last-run",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs/last",
		Summary:     "Get the last cycle",
		Description: "Returns the metrics of the most recent finished cycle.",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusNotFound},
	}, h.LastRun)
}
