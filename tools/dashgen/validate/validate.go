// Package validate checks generated dashboards and rule files: every query
// must parse as PromQL and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/vinted-notifier/tools/dashgen/rules"
)

// Result collects problems found during validation. Errors fail generation;
// warnings are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// panelJSON is the subset of the Grafana panel model validation needs.
// Rows carry their children in Panels.
type panelJSON struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Targets     []targetRef `json:"targets"`
	Panels      []panelJSON `json:"panels"`
}

type targetRef struct {
	Expr  string `json:"expr"`
	RefID string `json:"refId"`
}

// Dashboard validates every panel query in dash against known.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}
	var model struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	titles := make(map[string]bool)
	var walk func(panels []panelJSON)
	walk = func(panels []panelJSON) {
		for _, p := range panels {
			if p.Type == "row" {
				walk(p.Panels)
				continue
			}
			if titles[p.Title] {
				res.warnf("panel %q: duplicate title", p.Title)
			}
			titles[p.Title] = true
			if p.Description == "" {
				res.warnf("panel %q: missing description", p.Title)
			}
			if len(p.Targets) == 0 {
				res.errorf("panel %q: no queries", p.Title)
			}

			refs := make(map[string]bool)
			for _, t := range p.Targets {
				if refs[t.RefID] {
					res.errorf("panel %q: duplicate refId %q", p.Title, t.RefID)
				}
				refs[t.RefID] = true
				checkExpr(&res, "panel "+quote(p.Title), t.Expr, known)
			}
		}
	}
	walk(model.Panels)

	return res
}

// Rules validates a PrometheusRule. Recording rule names must themselves be
// known so dashboards and alerts can reference them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	for _, g := range cr.Spec.Groups {
		if len(g.Rules) == 0 {
			res.warnf("group %q: no rules", g.Name)
		}
		for _, r := range g.Rules {
			switch {
			case r.Record != "" && r.Alert != "":
				res.errorf("group %q: rule sets both record %q and alert %q", g.Name, r.Record, r.Alert)
				continue
			case r.Record != "":
				if !known[r.Record] {
					res.errorf("recording rule %q: name is not a known metric", r.Record)
				}
				checkExpr(&res, "recording rule "+quote(r.Record), r.Expr, known)
			case r.Alert != "":
				if r.Labels["severity"] == "" {
					res.errorf("alert %q: missing severity label", r.Alert)
				}
				if r.Annotations["summary"] == "" {
					res.warnf("alert %q: missing summary", r.Alert)
				}
				checkExpr(&res, "alert "+quote(r.Alert), r.Expr, known)
			default:
				res.errorf("group %q: rule has neither record nor alert", g.Name)
			}
		}
	}

	return res
}

func checkExpr(res *Result, where, expr string, known map[string]bool) {
	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return
	}
	names, err := Metrics(expr)
	if err != nil {
		res.errorf("%s: %v", where, err)
		return
	}
	for _, name := range names {
		if !known[baseName(name)] {
			res.errorf("%s: unknown metric %q", where, name)
		}
	}
}

// Metrics parses expr and returns the metric names it selects, in order of
// appearance.
func Metrics(expr string) ([]string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}

	var names []string
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := vs.Name
		if name == "" {
			for _, m := range vs.LabelMatchers {
				if m.Name == "__name__" {
					name = m.Value
				}
			}
		}
		if name != "" {
			names = append(names, name)
		}
		return nil
	})
	return names, nil
}

// baseName strips the series suffixes a histogram exposes.
func baseName(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			return trimmed
		}
	}
	return name
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
