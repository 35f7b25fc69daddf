package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/compare-methods/alphadiv/pkg/types"
)

// Frame is a header-addressed CSV table of raw string cells. Lines[i] is
// the input line Rows[i] was read from.
type Frame struct {
	Columns []string
	Rows    [][]string
	Lines   []int
}

// ReadFrameFile opens path and decodes it with ReadFrame.
func ReadFrameFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open: %w", err)
	}
	defer f.Close()
	return ReadFrame(f)
}

// ReadFrame decodes a CSV table with a header row. Blank rows are skipped and
// short rows are padded with empty cells so every row has len(Columns) cells.
func ReadFrame(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, readError(err)
	}

	f := &Frame{Columns: make([]string, len(header))}
	for i, c := range header {
		f.Columns[i] = cleanCell(c)
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		if len(row) > len(f.Columns) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("%d fields, header has %d", len(row), len(f.Columns)),
			}
		}
		for len(row) < len(f.Columns) {
			row = append(row, "")
		}
		f.Rows = append(f.Rows, row)
		f.Lines = append(f.Lines, line)
	}
	return f, nil
}

func readError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Err: err}
	}
	return fmt.Errorf("table: read: %w", err)
}

// Index returns the position of the named column.
func (f *Frame) Index(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Strings returns the trimmed cells of the named column.
func (f *Frame) Strings(name string) ([]string, error) {
	idx, ok := f.Index(name)
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = strings.TrimSpace(row[idx])
	}
	return out, nil
}

// Floats returns the named column as indices. Empty cells are undefined;
// any other cell that does not parse as a number is an error.
func (f *Frame) Floats(name string) ([]types.Index, error) {
	cells, err := f.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Index, len(cells))
	for i, s := range cells {
		if s == "" || strings.EqualFold(s, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ParseError{Line: f.line(i), Err: fmt.Errorf("column %q: %w", name, err)}
		}
		out[i] = types.Defined(v)
	}
	return out, nil
}

// line returns the input line of row i, for frames built without Lines.
func (f *Frame) line(i int) int {
	if i < len(f.Lines) {
		return f.Lines[i]
	}
	return i + 2
}
