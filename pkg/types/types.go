package types

import "strconv"

// Column names of the metrics table, in output order.
const (
	ColumnID           = "ID"
	ColumnRichness     = "Richness"
	ColumnBergerParker = "Berger_Parker"
	ColumnSimpson      = "Simpson"
	ColumnShannon      = "Shannon"
)

// MetricsHeader is the header row written for every metrics table.
var MetricsHeader = []string{
	ColumnID,
	ColumnRichness,
	ColumnBergerParker,
	ColumnSimpson,
	ColumnShannon,
}

// AbundanceRow is one sample of an abundance table.
type AbundanceRow struct {
	// ID is the sample identifier from the first column, kept verbatim.
	ID string

	// Counts holds one abundance per taxon column, aligned across all rows
	// of the same table. Values are already coerced: non-numeric and
	// negative cells arrive here as 0.
	Counts []float64
}

// Index is an optional diversity index value. The zero Index is undefined.
type Index struct {
	value   float64
	defined bool
}

// Defined returns an Index holding v.
func Defined(v float64) Index {
	return Index{value: v, defined: true}
}

// Undefined returns the "not computable" marker.
func Undefined() Index {
	return Index{}
}

// IsDefined reports whether the index carries a value.
func (i Index) IsDefined() bool { return i.defined }

// Value returns the index value and whether it is defined.
func (i Index) Value() (float64, bool) {
	return i.value, i.defined
}

// String formats a defined value with the shortest round-trip
// representation and an undefined one as the empty string.
func (i Index) String() string {
	if !i.defined {
		return ""
	}
	return strconv.FormatFloat(i.value, 'g', -1, 64)
}

// DiversityMetrics is the alpha-diversity summary of one AbundanceRow.
type DiversityMetrics struct {
	ID       string
	Richness int

	// BergerParker is the relative abundance of the dominant taxon.
	BergerParker Index
	// Simpson is 1 - Σp².
	Simpson Index
	// Shannon is -Σp·ln(p).
	Shannon Index
}

// Record returns m as a CSV record matching MetricsHeader.
func (m DiversityMetrics) Record() []string {
	return []string{
		m.ID,
		strconv.Itoa(m.Richness),
		m.BergerParker.String(),
		m.Simpson.String(),
		m.Shannon.String(),
	}
}

// Index returns the named index (Berger_Parker, Simpson or Shannon).
// Richness is returned as a defined Index. Unknown names are undefined.
func (m DiversityMetrics) Index(column string) (Index, bool) {
	switch column {
	case ColumnRichness:
		return Defined(float64(m.Richness)), true
	case ColumnBergerParker:
		return m.BergerParker, true
	case ColumnSimpson:
		return m.Simpson, true
	case ColumnShannon:
		return m.Shannon, true
	default:
		return Undefined(), false
	}
}
