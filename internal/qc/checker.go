package qc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/pkg/types"
)

const defaultSeverity = "warning"

// Flag records one sample matching one rule.
type Flag struct {
	Rule     string
	Severity string
	SampleID string
	Column   string
	Value    types.Index
}

type rule struct {
	name     string
	severity string
	cond     condition
}

// Checker evaluates a fixed set of compiled rules. A nil or empty Checker
// flags nothing. Checker is immutable and safe for concurrent use.
type Checker struct {
	rules []rule
}

// New compiles the configured rules.
func New(cfg config.QCConfig) (*Checker, error) {
	c := &Checker{rules: make([]rule, 0, len(cfg.Rules))}
	for _, r := range cfg.Rules {
		cond, err := parseCondition(r.Condition)
		if err != nil {
			return nil, fmt.Errorf("qc: rule %q: %w", r.Name, err)
		}
		sev := r.Severity
		if sev == "" {
			sev = defaultSeverity
		}
		c.rules = append(c.rules, rule{name: r.Name, severity: sev, cond: cond})
	}
	return c, nil
}

// Len returns the number of compiled rules.
func (c *Checker) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Evaluate tests every rule against m, in rule order.
func (c *Checker) Evaluate(m types.DiversityMetrics) []Flag {
	if c.Len() == 0 {
		return nil
	}
	var flags []Flag
	for _, r := range c.rules {
		fires, idx := r.cond.eval(m)
		if !fires {
			continue
		}
		flags = append(flags, Flag{
			Rule:     r.name,
			Severity: r.severity,
			SampleID: m.ID,
			Column:   r.cond.column,
			Value:    idx,
		})
	}
	return flags
}

// EvaluateTable evaluates every sample of a metrics table and logs each
// flag under file.
func (c *Checker) EvaluateTable(file string, ms []types.DiversityMetrics) []Flag {
	if c.Len() == 0 {
		return nil
	}
	var flags []Flag
	for _, m := range ms {
		for _, f := range c.Evaluate(m) {
			slog.Log(context.Background(), levelFor(f.Severity), "qc: sample flagged",
				"file", file,
				"rule", f.Rule,
				"sample", f.SampleID,
				"column", f.Column,
				"value", f.Value.String(),
			)
			flags = append(flags, f)
		}
	}
	return flags
}

func levelFor(severity string) slog.Level {
	switch severity {
	case "critical":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
