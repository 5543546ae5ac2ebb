package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/vinted-notifier/internal/api/handlers"
	"github.com/donaldgifford/vinted-notifier/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printReport(w io.Writer, r *handlers.RunReport) error {
	if jsonOutput() {
		return outputJSON(w, r)
	}

	tw := newTabWriter(w)
	tw.writef("Run:\t%s\n", r.RunID)
	tw.writef("Result:\t%s\n", r.Result)
	if r.DryRun {
		tw.writef("Dry run:\ttrue\n")
	}
	tw.writef("Duration:\t%s\n", time.Duration(r.DurationSeconds*float64(time.Second)).Round(time.Millisecond))
	if len(r.Skipped) > 0 {
		tw.writef("Skipped:\t%s\n", strings.Join(r.Skipped, ", "))
	}
	if r.Error != "" {
		tw.writef("Error:\t%s\n", r.Error)
	}
	tw.writef("\n")

	tw.writef("RULE\tFOUND\tFILTERED\tDUPLICATE\tNEW\tPRICE DROP\tDEFERRED\tNOTIFIED\tERRORED\n")
	for _, name := range slices.Sorted(maps.Keys(r.Rules)) {
		c := r.Rules[name]
		tw.writef("%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			name, c.Found, c.Filtered, c.Duplicate, c.New, c.PriceDrop, c.Deferred, c.Notified, c.Errored)
	}
	t := r.Totals
	tw.writef("TOTAL\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
		t.Found, t.Filtered, t.Duplicate, t.New, t.PriceDrop, t.Deferred, t.Notified, t.Errored)
	return tw.finish()
}

func printRulesTable(w io.Writer, rules []handlers.RuleView) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(w, "No searches configured.")
		return err
	}

	tw := newTabWriter(w)
	tw.writef("NAME\tENABLED\tCOOLDOWN\tBATCH\tPLATFORMS\tLOCALE\tURL\n")
	for i := range rules {
		r := &rules[i]
		platforms := make([]string, 0, len(r.Platforms))
		for _, p := range r.Platforms {
			platforms = append(platforms, string(p))
		}
		batch := "-"
		if r.Batch {
			batch = fmt.Sprintf("%d", r.MaxBatchSize)
		}
		for j, s := range r.Searches {
			if j == 0 {
				tw.writef("%s\t%v\t%dm\t%s\t%s\t%s\t%s\n",
					r.Name, r.Enabled, r.CooldownMinutes, batch, strings.Join(platforms, ","), s.Locale, s.URL)
				continue
			}
			tw.writef("\t\t\t\t\t%s\t%s\n", s.Locale, s.URL)
		}
	}
	return tw.finish()
}

func printStateTable(w io.Writer, summary []store.RuleSummary) error {
	if len(summary) == 0 {
		_, err := fmt.Fprintln(w, "No state recorded yet.")
		return err
	}

	tw := newTabWriter(w)
	tw.writef("RULE\tRECORDS\tLAST DISPATCH\tOLDEST\tNEWEST\n")
	for i := range summary {
		s := &summary[i]
		tw.writef("%s\t%d\t%s\t%s\t%s\n",
			s.Rule, s.Records, formatTime(s.LastDispatchAt), formatTime(s.OldestSeen), formatTime(s.NewestSeen))
	}
	return tw.finish()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
