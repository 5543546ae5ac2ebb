package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
	"github.com/donaldgifford/vinted-notifier/internal/engine"
	"github.com/donaldgifford/vinted-notifier/internal/store"
)

func TestPrintReport(t *testing.T) {
	resetFlags(rootCmd)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rm := &engine.RunMetrics{
		RunID:      "run-9",
		DryRun:     true,
		StartedAt:  start,
		FinishedAt: start.Add(1234 * time.Millisecond),
		Skipped:    []string{"off"},
		Rules: map[string]*engine.RuleMetrics{
			"b-rule": {Counts: engine.Counts{Found: 2, Notified: 1, Errored: 1}},
			"a-rule": {Counts: engine.Counts{Found: 3, Filtered: 1, New: 2, Notified: 2}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, handlers.NewRunReport(rm)))
	out := buf.String()

	assert.Contains(t, out, "run-9")
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "1.234s")
	assert.Contains(t, out, "Skipped:")
	assert.Regexp(t, `TOTAL\s+5\s+1\s+0\s+2\s+0\s+0\s+3\s+1`, out)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a-rule")), bytes.Index(buf.Bytes(), []byte("b-rule")))
}

func TestPrintStateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary []store.RuleSummary
		want    []string
	}{
		{
			name: "empty",
			want: []string{"No state recorded yet."},
		},
		{
			name:    "never dispatched",
			summary: []store.RuleSummary{{Rule: "jordan", Records: 0}},
			want:    []string{"RULE", "jordan", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printStateTable(&buf, tt.summary))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPrintRulesTable_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printRulesTable(&buf, nil))
	assert.Equal(t, "No searches configured.\n", buf.String())
}
