package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/compare-methods/alphadiv/internal/config"
)

// defaultConfigPath is loaded when --config is not given and the file exists.
const defaultConfigPath = "alphadiv.yaml"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string

	// level is shared with the handler so config reloads can change it.
	level *slog.LevelVar
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{level: new(slog.LevelVar)}

	root := &cobra.Command{
		Use:   "alphadiv",
		Short: "Alpha-diversity metrics and group comparisons for abundance tables",
		Long: `alphadiv computes richness, Berger-Parker, Simpson and Shannon indices for
every sample of sample-by-taxon abundance tables, and compares the resulting
metrics between groups with Kruskal-Wallis and Mann-Whitney tests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to config file (default ./"+defaultConfigPath+" if present)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug | info | warn | error (overrides config)")

	root.AddCommand(
		newComputeCmd(g),
		newWatchCmd(g),
		newStatsCmd(g),
	)
	return root
}

// load reads the config file and installs the logger. Flags that override
// config fields are applied by the caller before validation.
func (g *globalOptions) load(stderr io.Writer) (*config.Config, error) {
	cfg, err := g.readConfig()
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := g.setLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: g.level})))
	return cfg, nil
}

func (g *globalOptions) readConfig() (*config.Config, error) {
	path := g.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return config.Default(), nil
			}
			return nil, fmt.Errorf("stat %s: %w", defaultConfigPath, err)
		}
		path = defaultConfigPath
	}
	g.configPath = path
	return config.Load(path)
}

func (g *globalOptions) setLevel(name string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	g.level.Set(lvl)
	return nil
}
