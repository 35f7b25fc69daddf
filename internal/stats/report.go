package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Test names written in the report.
const (
	KindKruskal     = "kruskal-wallis"
	KindMannWhitney = "mann-whitney"
)

// ReportHeader is the header row of the CSV report.
var ReportHeader = []string{"Source", "Factor", "Metric", "Test", "Groups", "Statistic", "P", "Significance", "Note"}

// WriteReport writes reports as one CSV table: a row per Kruskal-Wallis
// entry, followed by a row per significant post-hoc pair.
func WriteReport(w io.Writer, reports ...*Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return fmt.Errorf("stats: write header: %w", err)
	}
	for _, rep := range reports {
		for _, e := range rep.Entries {
			for _, rec := range entryRecords(rep.Source, e) {
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("stats: write row: %w", err)
				}
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("stats: flush: %w", err)
	}
	return nil
}

func entryRecords(source string, e Entry) [][]string {
	base := func(test, groups, statistic, p, sig, note string) []string {
		return []string{source, e.Factor, e.Metric, test, groups, statistic, p, sig, note}
	}
	groups := describeGroups(e.Groups)

	switch {
	case e.Err != nil:
		return [][]string{base(KindKruskal, groups, "", "", "", "error: "+e.Err.Error())}
	case e.Kruskal == nil:
		return [][]string{base(KindKruskal, groups, "", "", "", e.Skipped)}
	}

	out := [][]string{base(KindKruskal, groups,
		formatFloat(e.Kruskal.H), formatFloat(e.Kruskal.P), Stars(e.Kruskal.P),
		fmt.Sprintf("df=%d n=%d", e.Kruskal.DF, e.Kruskal.N))}
	for _, pr := range e.PostHoc {
		out = append(out, base(KindMannWhitney, pr.A+" vs "+pr.B,
			formatFloat(pr.U), formatFloat(pr.P), Stars(pr.P), ""))
	}
	return out
}

func describeGroups(gs []Group) string {
	parts := make([]string, len(gs))
	for i, g := range gs {
		parts[i] = fmt.Sprintf("%s (n=%d, mean=%.4g, median=%.4g)", g.Name, len(g.Values), g.Mean(), g.Median())
	}
	return strings.Join(parts, "; ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteText writes a human-readable listing of rep:
//
//	Metodo:
//	- Richness: H = 7.200, p = 0.0273 *
//	    kraken vs metaphlan: U = 0, p = 0.0079
func WriteText(w io.Writer, rep *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis for %s\n", rep.Source)

	factor := ""
	for _, e := range rep.Entries {
		if e.Factor != factor {
			factor = e.Factor
			fmt.Fprintf(&b, "\nGrouped by %s:\n", factor)
		}
		switch {
		case e.Err != nil:
			fmt.Fprintf(&b, "- %s: test error: %v\n", e.Metric, e.Err)
		case e.Kruskal == nil:
			fmt.Fprintf(&b, "- %s: %s, no test run\n", e.Metric, e.Skipped)
		default:
			fmt.Fprintf(&b, "- %s: H = %.3f, p = %.4f %s\n", e.Metric, e.Kruskal.H, e.Kruskal.P, Stars(e.Kruskal.P))
			if len(e.PostHoc) > 0 {
				b.WriteString("    post-hoc (Mann-Whitney):\n")
			}
			for _, pr := range e.PostHoc {
				fmt.Fprintf(&b, "    %s vs %s: U = %.0f, p = %.4f\n", pr.A, pr.B, pr.U, pr.P)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
