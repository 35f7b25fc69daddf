// Package config loads and watches the alphadiv configuration file
// (alphadiv.yaml).
//
// Top-level types:
//   - Config{LogLevel, Batch, QC, Stats}: full config tree parsed from YAML
//   - BatchConfig: input_dir, output_dir, suffix, output_prefix,
//     problem_prefix, diagnostics, metrics_file, settle
//   - QCConfig, QCRule: name, condition ("richness < 10"), severity
//   - StatsConfig: metrics [], group_by [], alpha, output
//
// Load(path) reads the YAML file, applies defaults (".csv" suffix,
// "alpha_div_" / "PROBLEM_" prefixes, diagnostics on, alpha 0.05), then
// validates required fields and enums. Default() returns the same defaults
// for runs driven by flags only.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. A reload that fails to parse or
// validate is logged and skipped.
package config
