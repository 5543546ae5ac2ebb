package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/vinted-notifier/internal/api/client"
	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
)

func runCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one polling cycle and exit",
		Long: "Fetches every enabled search, notifies new listings and price drops,\n" +
			"saves state and exits. Failed searches or deliveries are reported in the\n" +
			"summary; the exit code is non-zero only for config or state file errors.",
		Example: `  vinted-notifier run --config config.yaml
  vinted-notifier run --dry-run --output json
  vinted-notifier run --server http://localhost:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if server := viper.GetString("server"); server != "" {
				report, err := apiclient.New(server).Run(ctx, dryRun)
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), report)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			rm, runErr := a.engine.RunCycle(ctx, dryRun)
			a.pushMetrics(ctx)

			if err := printReport(cmd.OutOrStdout(), handlers.NewRunReport(rm)); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log payloads instead of sending them and leave state untouched")
	return cmd
}
