package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/donaldgifford/vinted-notifier/internal/engine"
)

const readHeaderTimeout = 10 * time.Second

func watchCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll continuously and serve the HTTP API",
		Long: "Runs a cycle immediately and then every poll_interval_seconds. A cycle\n" +
			"that is still running when the next one is due makes that tick skip.\n" +
			"Serves /healthz, /readyz, /metrics and the /api/v1 endpoints.",
		Example: `  vinted-notifier watch --config config.yaml
  vinted-notifier watch --dry-run --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			return a.watch(ctx, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log payloads instead of sending them and leave state untouched")
	return cmd
}

func (a *app) watch(ctx context.Context, dryRun bool) error {
	sched, err := engine.NewScheduler(a.engine, a.cfg.PollInterval(), dryRun, a.log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:           otelhttp.NewHandler(newServer(a.engine, a.store, a.log), "vinted-notifier"),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sched.Start()

	var wg sync.WaitGroup
	wg.Go(sched.RunNow)

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err = <-serveErr:
		a.log.Error("server error", "error", err)
	}

	<-sched.Stop().Done()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		return errors.Join(err, fmt.Errorf("shutting down server: %w", serr))
	}

	a.log.Info("stopped")
	if err != nil {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}
