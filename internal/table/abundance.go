package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/compare-methods/alphadiv/pkg/types"
)

// MaxCoercionSamples bounds how many individual coercions are kept for
// diagnostics. Abundance.Coerced is always the exact count.
const MaxCoercionSamples = 5

// ErrEmptyTable is returned when the input has no header row.
var ErrEmptyTable = errors.New("table: no header row")

// ParseError reports a structural problem on a given line of the input.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Coercion describes a single cell that was replaced by 0.
type Coercion struct {
	// Line is the 1-based line number in the input, header included.
	Line   int
	Column string
	Raw    string
}

// Abundance is a decoded abundance table.
type Abundance struct {
	// Header holds the cleaned column names; Header[0] is the ID column.
	Header []string
	Rows   []types.AbundanceRow

	// Coerced counts every cell that was empty, non-numeric, non-finite,
	// negative or missing from a short row.
	Coerced int
	// Samples holds up to MaxCoercionSamples of those cells.
	Samples []Coercion
}

// Taxa returns the abundance column names.
func (a *Abundance) Taxa() []string {
	if len(a.Header) == 0 {
		return nil
	}
	return a.Header[1:]
}

// ReadAbundanceFile opens path and decodes it with ReadAbundance.
func ReadAbundanceFile(path string) (*Abundance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open: %w", err)
	}
	defer f.Close()
	return ReadAbundance(f)
}

// ReadAbundance decodes an abundance table: a header row, then one row per
// sample with the identifier in the first column and one abundance value per
// remaining column.
//
// Cells that do not parse as a finite non-negative number become 0 and are
// counted in Abundance.Coerced. Rows shorter than the header are padded with
// zeros the same way. A row longer than the header is a *ParseError because
// its values can no longer be aligned to taxa.
func ReadAbundance(r io.Reader) (*Abundance, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	out := &Abundance{Header: make([]string, len(header))}
	for i, cell := range header {
		out.Header[i] = cleanCell(cell)
	}
	// A header with the ID column only is valid: every row has no taxa.
	width := len(out.Header) - 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &ParseError{Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(record)-1 > width {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("%d fields, header has %d", len(record), len(out.Header)),
			}
		}

		row := types.AbundanceRow{
			ID:     record[0],
			Counts: make([]float64, width),
		}
		for j := 0; j < width; j++ {
			raw := ""
			if j+1 < len(record) {
				raw = record[j+1]
			}
			v, ok := parseCount(raw)
			if !ok {
				out.coerce(Coercion{Line: line, Column: out.Header[j+1], Raw: raw})
			}
			row.Counts[j] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (a *Abundance) coerce(c Coercion) {
	a.Coerced++
	if len(a.Samples) < MaxCoercionSamples {
		a.Samples = append(a.Samples, c)
	}
}

// parseCount returns the numeric value of a cell, or (0, false) when the cell
// must be coerced.
func parseCount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
