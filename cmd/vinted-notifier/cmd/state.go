package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/vinted-notifier/internal/api/client"
	"github.com/donaldgifford/vinted-notifier/internal/store"
)

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show remembered listings and last dispatch per search",
		Example: `  vinted-notifier state --config config.yaml
  vinted-notifier state --server http://localhost:8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var summary []store.RuleSummary

			if server := viper.GetString("server"); server != "" {
				var err error
				summary, err = apiclient.New(server).State(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				st := store.NewFileStore(cfg.StateFile, store.WithLogger(newLogger(cfg)))
				if err := st.Load(); err != nil {
					return err
				}
				summary = st.Summary()
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				if summary == nil {
					summary = []store.RuleSummary{}
				}
				return outputJSON(out, summary)
			}
			return printStateTable(out, summary)
		},
	}
}
