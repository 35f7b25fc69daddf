package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compare-methods/alphadiv/internal/config"
	"github.com/compare-methods/alphadiv/internal/qc"
	"github.com/compare-methods/alphadiv/internal/table"
)

const (
	goodCSV = "ID,Bacteroides,Prevotella,Akkermansia,Escherichia\n" +
		"Kraken2,10,20,30,40\n" +
		"MetaPhlAn,0,0,0,0\n"
	coercedCSV = "ID,a,b\n" +
		"s1,5,n/a\n" +
		"s2,-1,3\n"
	brokenCSV = "ID,a\n" +
		"s1,1\n" +
		"s2,1,2,3\n"
)

// newTestProcessor builds a Processor over fresh input/output directories
// with a fixed clock and run ID.
func newTestProcessor(t *testing.T, files map[string]string, opts ...Option) (*Processor, config.BatchConfig) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default().Batch
	cfg.InputDir = filepath.Join(root, "samples_abundancia")
	cfg.OutputDir = filepath.Join(root, "samples_alfa")
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, name), []byte(content), 0o644))
	}

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})}, opts...)
	p := New(cfg, opts...)
	p.newID = func() string { return "run-1" }
	return p, cfg
}

func TestProcess_IDOnlyTableHasUndefinedIndices(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{"ids.csv": "ID\ns1\ns2\n"})

	s, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.OK())
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "PROBLEM_ids.csv"))

	out, err := os.ReadFile(filepath.Join(cfg.OutputDir, "alpha_div_ids.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Richness,Berger_Parker,Simpson,Shannon\ns1,0,,,\ns2,0,,,\n", string(out))
}

func TestProcess_WritesOneOutputPerInput(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{
		"Mock-2.csv": goodCSV,
		"Mock-1.csv": coercedCSV,
		"notes.txt":  "ignored",
	})

	s, err := p.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", s.RunID)
	require.Len(t, s.Files, 2)
	assert.Equal(t, filepath.Join(cfg.InputDir, "Mock-1.csv"), s.Files[0].File, "lexical order")
	assert.Equal(t, 2, s.OK())
	assert.Empty(t, s.Failures())
	assert.Equal(t, 4, s.Rows())
	assert.Equal(t, 2, s.Coerced())
	assert.Equal(t, time.Second, s.Duration())

	out, err := os.ReadFile(filepath.Join(cfg.OutputDir, "alpha_div_Mock-2.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Richness,Berger_Parker,Simpson,Shannon", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Kraken2,4,0.4,"), lines[1])
	assert.Equal(t, "MetaPhlAn,0,,,", lines[2])
}

func TestProcess_FailedFileDoesNotAbortBatch(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{
		"a.csv": goodCSV,
		"b.csv": brokenCSV,
		"c.csv": goodCSV,
	})

	s, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, s.OK())

	failures := s.Failures()
	require.Len(t, failures, 1)
	fe := failures[0]
	assert.Equal(t, OpParse, fe.Op)
	assert.Equal(t, filepath.Join(cfg.InputDir, "b.csv"), fe.File)
	var perr *table.ParseError
	assert.True(t, errors.As(fe, &perr), "FileError unwraps to the parse error")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "alpha_div_b.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist, "no partial output for a failed file")

	problem, err := os.ReadFile(filepath.Join(cfg.OutputDir, "PROBLEM_b.csv"))
	require.NoError(t, err)
	assert.Equal(t, brokenCSV, string(problem), "diagnostic copy holds the raw input")
	assert.Equal(t, filepath.Join(cfg.OutputDir, "PROBLEM_b.csv"), s.Files[1].Diagnostic)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "alpha_div_c.csv"))
	assert.NoError(t, err)
}

func TestProcess_DiagnosticsDisabled(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{"b.csv": brokenCSV})
	p.cfg.Diagnostics = false

	s, err := p.Process(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Failures(), 1)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessFile_WriteFailure(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{"a.csv": goodCSV})
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	// A directory where the output file should go makes the rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(cfg.OutputDir, "alpha_div_a.csv"), 0o755))

	res, err := p.ProcessFile(context.Background(), filepath.Join(cfg.InputDir, "a.csv"))
	require.Error(t, err)

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, OpWrite, fe.Op)
	assert.Same(t, res.Err, fe)
	assert.Empty(t, res.Output)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "PROBLEM_a.csv"))
}

func TestProcessFile_ReadFailure(t *testing.T) {
	p, cfg := newTestProcessor(t, nil)

	res, err := p.ProcessFile(context.Background(), filepath.Join(cfg.InputDir, "gone.csv"))
	require.Error(t, err)
	assert.Equal(t, OpRead, res.Err.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, res.Diagnostic, "nothing to copy when the read fails")
}

func TestProcessFile_SuccessReturnsNilError(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{"a.csv": goodCSV})
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))

	res, err := p.ProcessFile(context.Background(), filepath.Join(cfg.InputDir, "a.csv"))
	require.NoError(t, err)
	assert.Nil(t, res.Err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "alpha_div_a.csv"), res.Output)
	assert.Equal(t, 2, res.Rows)
}

func TestProcess_QCFlags(t *testing.T) {
	checker, err := qc.New(config.QCConfig{Rules: []config.QCRule{
		{Name: "empty-sample", Condition: "shannon == undefined"},
		{Name: "low-richness", Condition: "richness < 3"},
	}})
	require.NoError(t, err)
	p, _ := newTestProcessor(t, map[string]string{"a.csv": goodCSV}, WithChecker(checker))

	s, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"empty-sample": 1, "low-richness": 1}, s.FlagsByRule())
}

func TestProcess_SameDirectorySkipsOwnOutputs(t *testing.T) {
	p, cfg := newTestProcessor(t, map[string]string{"a.csv": goodCSV, "b.csv": brokenCSV})
	p.cfg.OutputDir = cfg.InputDir

	first, err := p.Process(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Files, 2)

	second, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Files, 2, "alpha_div_ and PROBLEM_ files are not inputs")
}

func TestProcess_MissingInputDir(t *testing.T) {
	p, cfg := newTestProcessor(t, nil)
	require.NoError(t, os.Remove(cfg.InputDir))

	_, err := p.Process(context.Background())
	assert.Error(t, err)
}

func TestProcess_Cancelled(t *testing.T) {
	p, _ := newTestProcessor(t, map[string]string{"a.csv": goodCSV, "b.csv": goodCSV})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := p.Process(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Files)
}

func TestSummary_Merge(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Summary{RunID: "a", Started: t0, Finished: t0.Add(time.Second),
		Files: []*FileResult{{File: "x", Rows: 2}}}
	b := &Summary{RunID: "b", Started: t0.Add(time.Minute), Finished: t0.Add(2 * time.Minute),
		Files: []*FileResult{{File: "y", Rows: 3}, {File: "z", Err: &FileError{Op: OpParse}}}}

	a.Merge(b)
	a.Merge(nil)
	assert.Equal(t, "a", a.RunID)
	assert.Len(t, a.Files, 3)
	assert.Equal(t, 5, a.Rows())
	assert.Equal(t, 2, a.OK())
	assert.Equal(t, 2*time.Minute, a.Duration())
}
