package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/internal/diversity"
	"github.com/compare-methods/alphadiv/internal/qc"
	"github.com/compare-methods/alphadiv/internal/table"
)

// Processor turns abundance tables into metrics tables.
type Processor struct {
	cfg     config.BatchConfig
	checker atomic.Pointer[qc.Checker]
	now     func() time.Time // injectable for deterministic tests
	newID   func() string
}

// Option configures a Processor.
type Option func(*Processor)

// WithChecker evaluates QC rules against every computed sample.
func WithChecker(c *qc.Checker) Option {
	return func(p *Processor) { p.checker.Store(c) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New returns a Processor for cfg.
func New(cfg config.BatchConfig, opts ...Option) *Processor {
	p := &Processor{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetChecker replaces the QC rules used for files processed from now on.
// It is safe to call while Process or Watch is running.
func (p *Processor) SetChecker(c *qc.Checker) {
	p.checker.Store(c)
}

// Process handles every input file once. Per-file failures are recorded in
// the Summary; the returned error is non-nil only when the run could not
// start (input directory unreadable, output directory not creatable) or ctx
// was cancelled, in which case the partial Summary is still returned.
func (p *Processor) Process(ctx context.Context) (*Summary, error) {
	s := &Summary{RunID: p.newID(), Started: p.now()}
	defer func() { s.Finished = p.now() }()

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return s, fmt.Errorf("batch: create output dir: %w", err)
	}
	inputs, err := p.Inputs()
	if err != nil {
		return s, err
	}
	slog.Info("batch: run started", "run_id", s.RunID, "input_dir", p.cfg.InputDir, "files", len(inputs))

	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		// A failed file is already logged and recorded on its result.
		res, _ := p.ProcessFile(ctx, path)
		s.Files = append(s.Files, res)
	}

	slog.Info("batch: run finished",
		"run_id", s.RunID,
		"ok", s.OK(),
		"failed", len(s.Failures()),
		"rows", s.Rows(),
		"coerced", s.Coerced(),
	)
	return s, nil
}

// Inputs lists the input files in lexical order.
func (p *Processor) Inputs() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("batch: read input dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !p.isInput(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(p.cfg.InputDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// isInput reports whether a file name in the input directory should be
// processed. Hidden files (including in-flight atomic writes) are ignored,
// and so are this tool's own outputs when they share the input directory.
func (p *Processor) isInput(name string) bool {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, p.cfg.Suffix) {
		return false
	}
	if p.sameDir() {
		if p.cfg.OutputPrefix != "" && strings.HasPrefix(name, p.cfg.OutputPrefix) {
			return false
		}
		if p.cfg.ProblemPrefix != "" && strings.HasPrefix(name, p.cfg.ProblemPrefix) {
			return false
		}
	}
	return true
}

func (p *Processor) sameDir() bool {
	in, err1 := filepath.Abs(p.cfg.InputDir)
	out, err2 := filepath.Abs(p.cfg.OutputDir)
	return err1 == nil && err2 == nil && in == out
}

// OutputPath returns the metrics table path for an input file.
func (p *Processor) OutputPath(input string) string {
	return filepath.Join(p.cfg.OutputDir, p.cfg.OutputPrefix+filepath.Base(input))
}

// ProblemPath returns the diagnostic copy path for an input file.
func (p *Processor) ProblemPath(input string) string {
	return filepath.Join(p.cfg.OutputDir, p.cfg.ProblemPrefix+filepath.Base(input))
}

// ProcessFile computes and writes the metrics table of one input file. On
// failure the returned error is the *FileError also stored on the result.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	res := p.processFile(ctx, path)
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

func (p *Processor) processFile(ctx context.Context, path string) *FileResult {
	res := &FileResult{File: path}
	slog.Debug("batch: processing file", "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = &FileError{File: path, Op: OpRead, Err: err}
		slog.Error("batch: file failed", "file", path, "op", OpRead, "err", err)
		return res
	}

	tab, err := table.ReadAbundance(bytes.NewReader(data))
	if err != nil {
		p.fail(res, OpParse, err, data)
		return res
	}
	res.Rows = len(tab.Rows)
	res.Coerced = tab.Coerced
	res.Samples = tab.Samples
	if tab.Coerced > 0 {
		slog.Warn("batch: non-numeric values coerced to 0",
			"file", path,
			"count", tab.Coerced,
			"examples", formatSamples(tab.Samples),
		)
	}

	metrics := diversity.ComputeTable(tab.Rows)
	res.Flags = p.checker.Load().EvaluateTable(path, metrics)

	if err := ctx.Err(); err != nil {
		res.Err = &FileError{File: path, Op: OpWrite, Err: err}
		return res
	}
	out := p.OutputPath(path)
	if err := table.WriteMetricsFile(out, metrics); err != nil {
		p.fail(res, OpWrite, err, data)
		return res
	}
	res.Output = out
	slog.Info("batch: file written", "file", path, "output", out, "rows", res.Rows)
	return res
}

// fail records a FileError on res and writes the diagnostic copy.
func (p *Processor) fail(res *FileResult, op string, err error, raw []byte) {
	res.Err = &FileError{File: res.File, Op: op, Err: err}
	slog.Error("batch: file failed", "file", res.File, "op", op, "err", err)

	if !p.cfg.Diagnostics {
		return
	}
	dst := p.ProblemPath(res.File)
	werr := table.WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(raw)
		return err
	})
	if werr != nil {
		slog.Error("batch: diagnostic copy failed", "file", res.File, "path", dst, "err", werr)
		return
	}
	res.Diagnostic = dst
	slog.Info("batch: diagnostic copy saved", "file", res.File, "path", dst)
}

func formatSamples(cs []table.Coercion) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("line %d %s=%q", c.Line, c.Column, c.Raw)
	}
	return strings.Join(parts, "; ")
}
