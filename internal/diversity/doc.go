// Package diversity computes alpha-diversity indices for abundance table rows.
//
// metrics.go provides the pure ComputeMetrics(AbundanceRow) function and the
// order-preserving ComputeTable over a slice of rows:
//
//	richness      = |{c : c > 0}|
//	berger_parker = max(p_i)
//	simpson       = 1 - Σ p_i²
//	shannon       = -Σ p_i·ln(p_i)
//
// where p_i = c_i / Σc over the strictly positive counts only. A row with no
// positive count has richness 0 and the three indices undefined.
package diversity
