package batch

import (
	"time"

	"github.com/compare-methods/alphadiv/internal/qc"
	"github.com/compare-methods/alphadiv/internal/table"
)

// FileResult describes one processed input file.
type FileResult struct {
	File string
	// Output is the metrics table path; empty when the file failed.
	Output string
	// Diagnostic is the path of the problem copy, if one was written.
	Diagnostic string

	Rows    int
	Coerced int
	// Samples holds the first few coerced cells.
	Samples []table.Coercion
	Flags   []qc.Flag

	Err *FileError
}

// Summary aggregates one batch run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Files []*FileResult
}

// OK returns the number of files written successfully.
func (s *Summary) OK() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the errors of all failed files, in processing order.
func (s *Summary) Failures() []*FileError {
	var out []*FileError
	for _, f := range s.Files {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

// Rows returns the number of samples written.
func (s *Summary) Rows() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n += f.Rows
		}
	}
	return n
}

// Coerced returns the number of coerced cells across written files.
func (s *Summary) Coerced() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n += f.Coerced
		}
	}
	return n
}

// FlagsByRule counts QC flags per rule name.
func (s *Summary) FlagsByRule() map[string]int {
	out := make(map[string]int)
	for _, f := range s.Files {
		for _, fl := range f.Flags {
			out[fl.Rule]++
		}
	}
	return out
}

// Duration returns the wall time the run took.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// Merge appends the files of o into s and extends its time span. The
// RunID of s is kept. Watch mode uses it to keep running totals.
func (s *Summary) Merge(o *Summary) {
	if o == nil {
		return
	}
	s.Files = append(s.Files, o.Files...)
	if s.Started.IsZero() || (!o.Started.IsZero() && o.Started.Before(s.Started)) {
		s.Started = o.Started
	}
	if o.Finished.After(s.Finished) {
		s.Finished = o.Finished
	}
}
