package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/compare-methods/alphadiv/internal/batch"
	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/internal/qc"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compute all metrics tables, then recompute each abundance table as it changes",
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
			// The config watcher ends with the directory watch, whichever
			// way that returns.
			var wg sync.WaitGroup
			defer wg.Wait()
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if g.configPath != "" {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := config.Watch(ctx, g.configPath, g.reloader(proc)); err != nil {
						slog.Error("config watcher stopped", "err", err)
					}
				}()
			}

			var total *batch.Summary
			return proc.Watch(ctx, func(s *batch.Summary) {
				if total == nil {
					total = s
				} else {
					total.Merge(s)
				}
				reportFailures(s)
				writeMetricsFile(cfg.Batch.MetricsFile, total)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// reloader returns the config reload callback for watch. A reload changes
// the log level, unless --log-level was given, and the QC rules; directories
// and prefixes stay as they were at startup.
func (g *globalOptions) reloader(proc *batch.Processor) func(*config.Config) {
	return func(updated *config.Config) {
		if g.logLevel == "" {
			if err := g.setLevel(updated.LogLevel); err != nil {
				slog.Error("config: keeping log level", "err", err)
			}
		}
		checker, err := qc.New(updated.QC)
		if err != nil {
			slog.Error("config: keeping previous qc rules", "err", err)
			return
		}
		proc.SetChecker(checker)
	}
}
