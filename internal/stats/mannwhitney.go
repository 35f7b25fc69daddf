package stats

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
)

// PairResult is one post-hoc Mann-Whitney comparison.
type PairResult struct {
	A, B string
	// U counts the pairs (a, b) with a > b, ties counting one half.
	U float64
	P float64
}

// MannWhitney runs a two-sided Mann-Whitney U test of x against y.
func MannWhitney(x, y []float64) (u, p float64, err error) {
	res, err := stats.MannWhitneyUTest(x, y, stats.LocationDiffers)
	if err != nil {
		return 0, 0, fmt.Errorf("stats: mann-whitney: %w", err)
	}
	return res.U, res.P, nil
}
