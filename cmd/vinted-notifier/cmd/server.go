package cmd

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
	"github.com/donaldgifford/vinted-notifier/internal/api/middleware"
	"github.com/donaldgifford/vinted-notifier/internal/engine"
)

// newServer builds the watch-mode router: probes, Prometheus scrape and the
// huma API.
func newServer(eng *engine.Engine, state handlers.StateReader, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Recovery runs innermost so the request log and metrics see the 500.
	e.Use(middleware.RequestLog(log), middleware.Metrics(), middleware.Recovery(log))

	health := handlers.NewHealthHandler(eng)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("vinted-notifier", Version))
	handlers.RegisterRunRoutes(api, handlers.NewRunHandler(eng, eng))
	handlers.RegisterStateRoutes(api, handlers.NewStateHandler(state, eng))

	return e
}
