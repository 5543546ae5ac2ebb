// Package cmd implements the vinted-notifier CLI commands.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "VINTED"

var rootCmd = &cobra.Command{
	Use:   "vinted-notifier",
	Short: "Notify Slack and Discord about new Vinted listings",
	Long: "vinted-notifier polls the Vinted catalog for configured searches, filters\n" +
		"the results, and posts new listings and price drops to Slack or Discord\n" +
		"webhooks. Run it once from cron with `run`, or keep it polling with `watch`.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "config.yaml", "config file path")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("log-format", "", "log format (text, json); overrides the config file")
	flags.String("output", "text", "output format (text, json)")
	flags.String("server", "", "watch server URL; when set, commands query it instead of local state")

	for _, name := range []string{"config", "verbose", "log-format", "output", "server"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		runCmd(),
		watchCmd(),
		searchesCmd(),
		stateCmd(),
		versionCmd(),
	)
}

// initConfig lets every persistent flag be set from VINTED_* variables,
// e.g. VINTED_CONFIG or VINTED_LOG_FORMAT.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
