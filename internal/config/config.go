package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultLogLevel      = "info"
	DefaultSuffix        = ".csv"
	DefaultOutputPrefix  = "alpha_div_"
	DefaultProblemPrefix = "PROBLEM_"
	DefaultSettle        = 500 * time.Millisecond
	DefaultAlpha         = 0.05
)

// Default statistics selections, matching the columns of the method
// comparison tables.
var (
	DefaultStatsMetrics = []string{"Richness", "Berger_Parker", "Simpson"}
	DefaultStatsGroupBy = []string{"Subsampling", "Metodo", "DB"}
)

// Config is the top-level alphadiv configuration.
type Config struct {
	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	Batch BatchConfig `yaml:"batch"`
	QC    QCConfig    `yaml:"qc"`
	Stats StatsConfig `yaml:"stats"`
}

// BatchConfig controls the abundance → metrics batch run.
type BatchConfig struct {
	// InputDir holds the abundance tables.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one metrics table per input file. It is created
	// if missing and may be the same directory as InputDir.
	OutputDir string `yaml:"output_dir"`

	// Suffix selects input files by name, ".csv" by default.
	Suffix string `yaml:"suffix"`

	// OutputPrefix is prepended to the input file name to form the output
	// file name.
	OutputPrefix string `yaml:"output_prefix"`

	// ProblemPrefix names the diagnostic copy of a file that failed.
	ProblemPrefix string `yaml:"problem_prefix"`

	// Diagnostics enables diagnostic copies of failing input files.
	Diagnostics bool `yaml:"diagnostics"`

	// MetricsFile, when set, receives a Prometheus text exposition of the
	// run summary after every batch.
	MetricsFile string `yaml:"metrics_file"`

	// Settle is how long watch mode waits after the last write to a file
	// before processing it.
	Settle time.Duration `yaml:"settle"`
}

// QCConfig holds the quality-control rules evaluated against every sample.
type QCConfig struct {
	Rules []QCRule `yaml:"rules"`
}

// QCRule flags samples whose metrics match Condition.
type QCRule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "richness < 10" or
	// "shannon == undefined".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`
}

// StatsConfig selects the group comparisons run by `alphadiv stats`.
type StatsConfig struct {
	// Metrics are the metric columns tested.
	Metrics []string `yaml:"metrics"`

	// GroupBy are the grouping factor columns.
	GroupBy []string `yaml:"group_by"`

	// Alpha is the significance level for Kruskal-Wallis and the
	// Mann-Whitney post-hoc filter.
	Alpha float64 `yaml:"alpha"`

	// Output is the report CSV path. Empty means stdout.
	Output string `yaml:"output"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config pre-populated with default values. Directories
// are left empty; callers must set them before Validate passes.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Batch: BatchConfig{
			Suffix:        DefaultSuffix,
			OutputPrefix:  DefaultOutputPrefix,
			ProblemPrefix: DefaultProblemPrefix,
			Diagnostics:   true,
			Settle:        DefaultSettle,
		},
		Stats: StatsConfig{
			Metrics: append([]string(nil), DefaultStatsMetrics...),
			GroupBy: append([]string(nil), DefaultStatsGroupBy...),
			Alpha:   DefaultAlpha,
		},
	}
}

// Validate checks required fields and structural constraints.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ValidateBatch checks only the fields a batch run needs. `alphadiv stats`
// runs without input or output directories.
func (c *Config) ValidateBatch() error {
	if c.Batch.InputDir == "" {
		return errors.New("config: batch.input_dir is required")
	}
	if c.Batch.OutputDir == "" {
		return errors.New("config: batch.output_dir is required")
	}
	return nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Batch.Suffix == "" {
		return errors.New("batch.suffix must not be empty")
	}
	if c.Batch.OutputPrefix == "" && c.Batch.InputDir != "" && c.Batch.InputDir == c.Batch.OutputDir {
		return errors.New("batch.output_prefix is required when input_dir and output_dir are the same")
	}
	if c.Batch.Diagnostics && c.Batch.ProblemPrefix == "" {
		return errors.New("batch.problem_prefix is required when diagnostics are enabled")
	}
	if c.Batch.Settle < 0 {
		return errors.New("batch.settle must not be negative")
	}
	for i, r := range c.QC.Rules {
		if r.Name == "" {
			return fmt.Errorf("qc.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("qc.rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("qc.rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	if c.Stats.Alpha <= 0 || c.Stats.Alpha >= 1 {
		return fmt.Errorf("stats.alpha must be in (0, 1), got %v", c.Stats.Alpha)
	}
	if len(c.Stats.Metrics) == 0 {
		return errors.New("stats.metrics must not be empty")
	}
	if len(c.Stats.GroupBy) == 0 {
		return errors.New("stats.group_by must not be empty")
	}
	return nil
}
