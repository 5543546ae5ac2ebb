package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMetrics_Aggregation(t *testing.T) {
	t.Parallel()

	rm := newRunMetrics(false, t0)
	assert.NotEmpty(t, rm.RunID)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			rm.addUnit("jordans", "fr", Counts{Found: 2, Filtered: 1, New: 1})
		})
	}
	wg.Wait()
	rm.addUnit("jordans", "de", Counts{Found: 1, Errored: 1})
	rm.addRule("jordans", Counts{Notified: 10, Payloads: 10})
	rm.addUnit("dunks", "fr", Counts{Found: 3, Duplicate: 3})
	rm.skip("boots")
	rm.finish(t0.Add(90*time.Second), false, nil)

	assert.Equal(t, Counts{Found: 21, Filtered: 10, New: 10, Errored: 1, Notified: 10, Payloads: 10}, rm.Rule("jordans"))
	assert.Equal(t, Counts{Found: 20, Filtered: 10, New: 10}, *rm.Rules["jordans"].Locales["fr"])
	assert.Equal(t, 24, rm.Totals().Found)
	assert.Equal(t, 90*time.Second, rm.Duration())
	assert.Equal(t, "partial", rm.Result())
	assert.Equal(t, []string{"boots"}, rm.Skipped)
	assert.Equal(t, Counts{}, rm.Rule("missing"))
}

func TestRunMetrics_Result(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		counts    Counts
		cancelled bool
		err       error
		want      string
	}{
		{name: "clean", counts: Counts{Notified: 1}, want: "success"},
		{name: "unit errors", counts: Counts{Errored: 2}, want: "partial"},
		{name: "cancelled", cancelled: true, want: "cancelled"},
		{name: "save failed", err: errors.New("disk full"), cancelled: true, want: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rm := newRunMetrics(false, t0)
			rm.addRule("r", tt.counts)
			rm.finish(t0, tt.cancelled, tt.err)
			assert.Equal(t, tt.want, rm.Result())
		})
	}
}

func TestRunMetrics_MarshalJSON(t *testing.T) {
	t.Parallel()

	rm := newRunMetrics(true, t0)
	rm.addUnit("jordans", "fr", Counts{Found: 3, New: 2})
	rm.addRule("jordans", Counts{Notified: 2, Batched: 2, Payloads: 1})
	rm.finish(t0.Add(2*time.Second), false, nil)

	data, err := json.Marshal(rm)
	require.NoError(t, err)

	var got struct {
		RunID           string  `json:"run_id"`
		DryRun          bool    `json:"dry_run"`
		DurationSeconds float64 `json:"duration_seconds"`
		Totals          Counts  `json:"totals"`
		Rules           map[string]struct {
			Found    int               `json:"found"`
			Notified int               `json:"notified"`
			Locales  map[string]Counts `json:"locales"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, rm.RunID, got.RunID)
	assert.True(t, got.DryRun)
	assert.InDelta(t, 2.0, got.DurationSeconds, 0.001)
	assert.Equal(t, 3, got.Totals.Found)
	assert.Equal(t, 2, got.Totals.Notified)
	assert.Equal(t, 3, got.Rules["jordans"].Found)
	assert.Equal(t, 2, got.Rules["jordans"].Notified)
	assert.Equal(t, 2, got.Rules["jordans"].Locales["fr"].New)
}

func TestRunMetrics_LogSummary(t *testing.T) {
	t.Parallel()

	rm := newRunMetrics(false, t0)
	rm.addUnit("jordans", "fr", Counts{Found: 4, Duplicate: 1})
	rm.addRule("jordans", Counts{Notified: 3})
	rm.finish(t0.Add(time.Second), false, nil)

	var buf bytes.Buffer
	rm.LogSummary(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	out := buf.String()
	assert.Contains(t, out, "rule summary")
	assert.Contains(t, out, "rule=jordans")
	assert.Contains(t, out, "locale summary")
	assert.Contains(t, out, "cycle complete")
	assert.Contains(t, out, "notified=3")
	assert.Contains(t, out, "result=success")
}
