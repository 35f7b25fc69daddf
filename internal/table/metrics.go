package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/compare-methods/alphadiv/pkg/types"
)

// WriteMetrics encodes ms as a metrics table in input order. Undefined
// indices are written as empty cells.
func WriteMetrics(w io.Writer, ms []types.DiversityMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.MetricsHeader); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	for i, m := range ms {
		if err := cw.Write(m.Record()); err != nil {
			return fmt.Errorf("table: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}
	return nil
}

// WriteMetricsFile writes a metrics table to path atomically.
func WriteMetricsFile(path string, ms []types.DiversityMetrics) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteMetrics(w, ms)
	})
}
