// Package table reads and writes the CSV tables exchanged by alphadiv.
//
// abundance.go decodes sample-by-taxon abundance tables into
// types.AbundanceRow values, coercing every cell that is not a clean
// non-negative number to 0 and recording the coercion. metrics.go encodes
// types.DiversityMetrics as the ID,Richness,Berger_Parker,Simpson,Shannon
// table. frame.go is a small header-addressed reader used by the statistics
// package for metrics tables that carry extra grouping columns.
//
// atomic.go provides WriteFileAtomic, a temp-file-and-rename writer so an
// output file is either fully written or not present at all.
package table
