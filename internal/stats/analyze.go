package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/internal/table"
	"github.com/compare-methods/alphadiv/pkg/types"
)

// Options selects what Analyze compares.
type Options struct {
	Metrics []string
	GroupBy []string
	Alpha   float64
}

// OptionsFromConfig copies the stats section of the config.
func OptionsFromConfig(cfg config.StatsConfig) Options {
	return Options{Metrics: cfg.Metrics, GroupBy: cfg.GroupBy, Alpha: cfg.Alpha}
}

// Group is one level of a grouping factor with its defined metric values.
type Group struct {
	Name   string
	Values []float64
}

// Mean returns the arithmetic mean of the group values.
func (g Group) Mean() float64 {
	return stat.Mean(g.Values, nil)
}

// Median returns the empirical median of the group values, or NaN for an
// empty group.
func (g Group) Median() float64 {
	if len(g.Values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), g.Values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Entry is the analysis of one metric under one grouping factor.
type Entry struct {
	Factor string
	Metric string
	Groups []Group

	// Skipped explains why no test was run.
	Skipped string
	// Err is set when the test itself failed.
	Err error

	Kruskal *KruskalResult
	// PostHoc holds the significant pairwise comparisons, in group order.
	PostHoc []PairResult
}

// Significant reports whether the Kruskal-Wallis test rejected at alpha.
func (e Entry) Significant(alpha float64) bool {
	return e.Kruskal != nil && e.Kruskal.P < alpha
}

// Report is the full analysis of one metrics table.
type Report struct {
	Source  string
	Alpha   float64
	Entries []Entry
}

// Analyze runs the group comparisons on f. For each grouping factor and
// metric it runs Kruskal-Wallis over the groups, in order of first
// appearance, and when the result is significant with more than two groups,
// Mann-Whitney on every pair, keeping the significant pairs. Undefined metric
// values are left out of their group. Problems with one factor or metric are
// recorded on its Entry and do not stop the analysis.
func Analyze(source string, f *table.Frame, opts Options) (*Report, error) {
	if f == nil {
		return nil, errors.New("stats: nil frame")
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return nil, fmt.Errorf("stats: alpha must be in (0, 1), got %v", opts.Alpha)
	}

	rep := &Report{Source: source, Alpha: opts.Alpha}
	for _, factor := range opts.GroupBy {
		levels, ferr := f.Strings(factor)
		for _, metric := range opts.Metrics {
			e := Entry{Factor: factor, Metric: metric}
			if ferr != nil {
				e.Err = ferr
				rep.Entries = append(rep.Entries, e)
				continue
			}
			analyzeMetric(&e, f, levels, opts.Alpha)
			rep.Entries = append(rep.Entries, e)
		}
	}
	return rep, nil
}

func analyzeMetric(e *Entry, f *table.Frame, levels []string, alpha float64) {
	values, err := f.Floats(e.Metric)
	if err != nil {
		e.Err = err
		return
	}
	e.Groups = groupValues(levels, values)

	switch len(e.Groups) {
	case 0:
		e.Skipped = "no values"
		return
	case 1:
		e.Skipped = fmt.Sprintf("only one group (%s)", e.Groups[0].Name)
		return
	}

	samples := make([][]float64, len(e.Groups))
	for i, g := range e.Groups {
		samples[i] = g.Values
	}
	kw, err := KruskalWallis(samples...)
	if err != nil {
		e.Err = err
		return
	}
	e.Kruskal = &kw

	if kw.P >= alpha || len(e.Groups) <= 2 {
		return
	}
	for i := 0; i < len(e.Groups); i++ {
		for j := i + 1; j < len(e.Groups); j++ {
			a, b := e.Groups[i], e.Groups[j]
			u, p, err := MannWhitney(a.Values, b.Values)
			if err != nil {
				slog.Debug("stats: post-hoc skipped",
					"factor", e.Factor, "metric", e.Metric,
					"a", a.Name, "b", b.Name, "err", err)
				continue
			}
			if p < alpha {
				e.PostHoc = append(e.PostHoc, PairResult{A: a.Name, B: b.Name, U: u, P: p})
			}
		}
	}
}

// groupValues splits the defined values by level, keeping levels in order of
// first appearance. Levels whose values are all undefined are dropped.
func groupValues(levels []string, values []types.Index) []Group {
	pos := make(map[string]int)
	var groups []Group
	for i, lvl := range levels {
		v, ok := values[i].Value()
		if !ok {
			continue
		}
		gi, seen := pos[lvl]
		if !seen {
			gi = len(groups)
			pos[lvl] = gi
			groups = append(groups, Group{Name: lvl})
		}
		groups[gi].Values = append(groups[gi].Values, v)
	}
	return groups
}

// Stars maps a p-value to the conventional significance marker.
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return "ns"
	}
}
