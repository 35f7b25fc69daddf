package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/compare-methods/alphadiv/internal/stats"
	"github.com/compare-methods/alphadiv/internal/table"
)

const (
	formatText = "text"
	formatCSV  = "csv"
)

func newStatsCmd(g *globalOptions) *cobra.Command {
	var (
		metrics []string
		groupBy []string
		alpha   float64
		format  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Compare metrics between groups with Kruskal-Wallis and Mann-Whitney tests",
		Long: `stats reads metrics tables that carry grouping columns (for example
Subsampling, Metodo and DB) and, for every grouping column and metric, runs a
Kruskal-Wallis test. When it is significant and there are more than two
groups, every pair of groups is compared with a two-sided Mann-Whitney U test
and the significant pairs are reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("metric") {
				cfg.Stats.Metrics = metrics
			}
			if fs.Changed("group-by") {
				cfg.Stats.GroupBy = groupBy
			}
			if fs.Changed("alpha") {
				cfg.Stats.Alpha = alpha
			}
			if fs.Changed("report") {
				cfg.Stats.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if format != formatText && format != formatCSV {
				return fmt.Errorf("unknown --format %q", format)
			}

			opts := stats.OptionsFromConfig(cfg.Stats)
			var reports []*stats.Report
			for _, path := range args {
				f, err := table.ReadFrameFile(path)
				if err != nil {
					slog.Error("stats: file skipped", "file", path, "err", err)
					continue
				}
				rep, err := stats.Analyze(filepath.Base(path), f, opts)
				if err != nil {
					return err
				}
				reports = append(reports, rep)
			}
			if len(reports) == 0 {
				return &exitError{code: 1, msg: "no readable metrics tables"}
			}

			write := func(w io.Writer) error {
				if format == formatCSV {
					return stats.WriteReport(w, reports...)
				}
				for _, rep := range reports {
					if err := stats.WriteText(w, rep); err != nil {
						return err
					}
				}
				return nil
			}
			if cfg.Stats.Output == "" {
				return write(cmd.OutOrStdout())
			}
			if err := table.WriteFileAtomic(cfg.Stats.Output, write); err != nil {
				return err
			}
			slog.Info("stats: report written", "path", cfg.Stats.Output, "files", len(reports))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&metrics, "metric", nil, "metric columns to test (overrides stats.metrics)")
	fs.StringSliceVar(&groupBy, "group-by", nil, "grouping columns (overrides stats.group_by)")
	fs.Float64Var(&alpha, "alpha", 0, "significance level (overrides stats.alpha)")
	fs.StringVar(&format, "format", formatText, "report format: text | csv")
	fs.StringVarP(&output, "report", "r", "", "write the report to this file instead of stdout (overrides stats.output)")
	return cmd
}
