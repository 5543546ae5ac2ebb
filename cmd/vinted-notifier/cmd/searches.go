package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/vinted-notifier/internal/api/client"
	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
)

func searchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "searches",
		Short: "List configured searches and their catalog URLs",
		Long: "Prints every search rule with the Vinted catalog URL of each locale, so\n" +
			"the query can be checked in a browser before the first run.",
		Example: `  vinted-notifier searches --config config.yaml
  vinted-notifier searches --server http://localhost:8080 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var views []handlers.RuleView

			if server := viper.GetString("server"); server != "" {
				var err error
				views, err = apiclient.New(server).Rules(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				rules := cfg.Rules()
				views = make([]handlers.RuleView, 0, len(rules))
				for i := range rules {
					views = append(views, handlers.NewRuleView(&rules[i]))
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, views)
			}
			return printRulesTable(out, views)
		},
	}
}
