package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/vinted-notifier/internal/engine"
)

// RunReporter exposes the outcome of the most recent cycle.
type RunReporter interface {
	LastRun() *engine.RunMetrics
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	runs RunReporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(r RunReporter) *HealthHandler {
	return &HealthHandler{runs: r}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 503 when the last cycle could not load or save state,
// 200 otherwise.
//
// @Summary Readiness check
// @Description Returns 503 when the last cycle failed on state I/O.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if last := h.runs.LastRun(); last != nil && last.Error != "" {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
