package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/compare-methods/alphadiv/internal/batch"
	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/internal/export"
	"github.com/compare-methods/alphadiv/internal/qc"
)

// batchFlags override the batch section of the config.
type batchFlags struct {
	inputDir      string
	outputDir     string
	suffix        string
	metricsFile   string
	noDiagnostics bool
	failOnError   bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.inputDir, "input", "i", "", "directory of abundance tables (overrides batch.input_dir)")
	fs.StringVarP(&f.outputDir, "output", "o", "", "directory for metrics tables (overrides batch.output_dir)")
	fs.StringVar(&f.suffix, "suffix", "", "input file name suffix (overrides batch.suffix)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write a Prometheus textfile summary here (overrides batch.metrics_file)")
	fs.BoolVar(&f.noDiagnostics, "no-diagnostics", false, "do not save PROBLEM_ copies of failing files")
	fs.BoolVar(&f.failOnError, "fail-on-error", false, "exit with status 2 when any file fails")
}

// apply overrides cfg with the flags that were set, then validates it.
func (f *batchFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Batch.InputDir = f.inputDir
	}
	if fs.Changed("output") {
		cfg.Batch.OutputDir = f.outputDir
	}
	if fs.Changed("suffix") {
		cfg.Batch.Suffix = f.suffix
	}
	if fs.Changed("metrics-file") {
		cfg.Batch.MetricsFile = f.metricsFile
	}
	if f.noDiagnostics {
		cfg.Batch.Diagnostics = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.ValidateBatch()
}

func newComputeCmd(g *globalOptions) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute metrics tables for every abundance table in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			proc, err := newProcessor(cfg)
			if err != nil {
				return err
			}

			summary, err := proc.Process(cmd.Context())
			if err != nil {
				return err
			}
			writeMetricsFile(cfg.Batch.MetricsFile, summary)
			reportFailures(summary)

			if flags.failOnError && len(summary.Failures()) > 0 {
				return &exitError{code: 2, msg: fmt.Sprintf("%d of %d files failed", len(summary.Failures()), len(summary.Files))}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newProcessor(cfg *config.Config) (*batch.Processor, error) {
	checker, err := qc.New(cfg.QC)
	if err != nil {
		return nil, err
	}
	return batch.New(cfg.Batch, batch.WithChecker(checker)), nil
}

func writeMetricsFile(path string, s *batch.Summary) {
	if path == "" {
		return
	}
	if err := export.WriteSummaryFile(path, s); err != nil {
		slog.Error("export: write metrics file failed", "path", path, "err", err)
		return
	}
	slog.Debug("export: metrics file written", "path", path)
}

func reportFailures(s *batch.Summary) {
	for _, fe := range s.Failures() {
		slog.Warn("file skipped", "file", fe.File, "op", fe.Op, "err", fe.Err)
	}
}
