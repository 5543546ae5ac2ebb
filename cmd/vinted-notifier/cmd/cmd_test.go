package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
	"github.com/donaldgifford/vinted-notifier/internal/config"
	"github.com/donaldgifford/vinted-notifier/internal/store"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// execute runs the root command with every flag reset to its default, so
// tests do not leak flag values into each other.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeConfig(t *testing.T, body string) (cfgPath, statePath string) {
	t.Helper()

	dir := t.TempDir()
	statePath = filepath.Join(dir, "state.json")
	cfgPath = filepath.Join(dir, "config.yaml")
	body = "state_file: " + statePath + "\n" + body
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, statePath
}

const twoSearches = `
slack_webhook_url: https://hooks.slack.com/services/T000/B000/XXXX
searches:
  - name: jordan
    keywords: [jordan, "1"]
    locales: [fr, de]
    cooldown_minutes: 30
  - name: switch
    keywords: [nintendo switch]
    enabled: false
`

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vinted-notifier dev\n", out)
}

func TestSearchesCmd(t *testing.T) {
	cfgPath, _ := writeConfig(t, twoSearches)

	out, err := execute(t, "searches", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "jordan")
	assert.Contains(t, out, "30m")
	assert.Contains(t, out, "slack")
	assert.Contains(t, out, "https://www.vinted.fr/catalog?order=newest_first&search_text=jordan+1")
	assert.Contains(t, out, "https://www.vinted.de/catalog?")
	assert.Contains(t, out, "switch")
	assert.NotContains(t, out, "XXXX")
}

func TestSearchesCmd_JSON(t *testing.T) {
	cfgPath, _ := writeConfig(t, twoSearches)

	out, err := execute(t, "searches", "--config", cfgPath, "--output", "json")
	require.NoError(t, err)

	var views []handlers.RuleView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "jordan", views[0].Name)
	assert.Len(t, views[0].Searches, 2)
	assert.False(t, views[1].Enabled)
}

func TestSearchesCmd_InvalidConfig(t *testing.T) {
	cfgPath, _ := writeConfig(t, `
max_batch_size: 50
searches:
  - keywords: [x]
`)

	_, err := execute(t, "searches", "--config", cfgPath)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "max_batch_size")
	assert.Contains(t, err.Error(), "searches[0].name is required")
}

func TestSearchesCmd_MissingConfig(t *testing.T) {
	_, err := execute(t, "searches", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestStateCmd(t *testing.T) {
	cfgPath, statePath := writeConfig(t, twoSearches)

	out, err := execute(t, "state", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No state recorded yet.")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := store.NewFileStore(statePath)
	require.NoError(t, st.Load())
	st.Upsert("jordan", "101", domain.SeenRecord{FirstSeen: at, LastNotifiedAt: at, LastNotifiedPrice: 80})
	st.Upsert("jordan", "102", domain.SeenRecord{FirstSeen: at, LastNotifiedAt: at, LastNotifiedPrice: 95})
	st.SetLastDispatch("jordan", at)
	require.NoError(t, st.Save())

	out, err = execute(t, "state", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "RULE")
	assert.Regexp(t, `jordan\s+2\s+`, out)

	out, err = execute(t, "state", "--config", cfgPath, "--output", "json")
	require.NoError(t, err)
	var summary []store.RuleSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].Records)
}

func TestStateCmd_CorruptState(t *testing.T) {
	cfgPath, statePath := writeConfig(t, twoSearches)
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	_, err := execute(t, "state", "--config", cfgPath)

	var ioErr *store.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "load", ioErr.Op)
}

func TestRunCmd_DryRunNoEnabledSearches(t *testing.T) {
	cfgPath, statePath := writeConfig(t, `
searches:
  - name: switch
    keywords: [nintendo switch]
    enabled: false
`)

	out, err := execute(t, "run", "--config", cfgPath, "--dry-run", "--output", "json")
	require.NoError(t, err)

	var report handlers.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.DryRun)
	assert.Equal(t, "success", report.Result)
	assert.Equal(t, []string{"switch"}, report.Skipped)

	_, statErr := os.Stat(statePath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not write state")
}

func TestRunCmd_CorruptStateFails(t *testing.T) {
	cfgPath, statePath := writeConfig(t, twoSearches)
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	out, err := execute(t, "run", "--config", cfgPath)
	require.Error(t, err)

	var ioErr *store.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Contains(t, out, "failed")
}
