package diversity

import (
	"math"

	"github.com/compare-methods/alphadiv/pkg/types"
)

// ComputeMetrics derives the alpha-diversity metrics of a single row.
//
// Only strictly positive, finite counts take part. When none remain the
// result has Richness 0 and undefined BergerParker, Simpson and Shannon.
// ComputeMetrics never fails: malformed input is expected to have been
// coerced to 0 by the table reader.
func ComputeMetrics(row types.AbundanceRow) types.DiversityMetrics {
	out := types.DiversityMetrics{ID: row.ID}

	positive := make([]float64, 0, len(row.Counts))
	var total float64
	for _, c := range row.Counts {
		if c > 0 && !math.IsInf(c, 1) {
			positive = append(positive, c)
			total += c
		}
	}

	out.Richness = len(positive)
	if out.Richness == 0 {
		out.BergerParker = types.Undefined()
		out.Simpson = types.Undefined()
		out.Shannon = types.Undefined()
		return out
	}

	// total > 0 here: every element of positive is > 0.
	var maxP, sumSq, entropy float64
	for _, c := range positive {
		p := c / total
		if p > maxP {
			maxP = p
		}
		sumSq += p * p
		entropy -= p * math.Log(p)
	}

	out.BergerParker = types.Defined(maxP)
	out.Simpson = types.Defined(1 - sumSq)
	out.Shannon = types.Defined(entropy)
	return out
}

// ComputeTable applies ComputeMetrics to every row independently.
// The result has the same length and order as rows.
func ComputeTable(rows []types.AbundanceRow) []types.DiversityMetrics {
	out := make([]types.DiversityMetrics, len(rows))
	for i, row := range rows {
		out[i] = ComputeMetrics(row)
	}
	return out
}
