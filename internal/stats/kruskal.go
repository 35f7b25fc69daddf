package stats

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrTooFewGroups is returned when fewer than two non-empty groups are given.
	ErrTooFewGroups = errors.New("stats: need at least two non-empty groups")

	// ErrIdenticalValues is returned when every observation is equal, which
	// makes the rank statistic undefined.
	ErrIdenticalValues = errors.New("stats: all values are identical")
)

// KruskalResult is the outcome of a Kruskal-Wallis H test.
type KruskalResult struct {
	// H is the tie-corrected test statistic.
	H float64
	// P is the upper-tail χ² probability of H.
	P float64
	// DF is the number of groups minus one.
	DF int
	// N is the total number of observations.
	N int
}

type ranked struct {
	v     float64
	group int
}

// KruskalWallis tests whether the groups come from the same distribution.
// Empty groups are ignored.
func KruskalWallis(groups ...[]float64) (KruskalResult, error) {
	var all []ranked
	sizes := make([]int, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		gi := len(sizes)
		sizes = append(sizes, len(g))
		for _, v := range g {
			all = append(all, ranked{v: v, group: gi})
		}
	}
	k := len(sizes)
	if k < 2 {
		return KruskalResult{}, ErrTooFewGroups
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	n := len(all)
	rankSums := make([]float64, k)
	var tieSum float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && all[j].v == all[i].v {
			j++
		}
		// Positions i..j-1 share the average of ranks i+1..j.
		avg := float64(i+j+1) / 2
		for _, r := range all[i:j] {
			rankSums[r.group] += avg
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}

	nf := float64(n)
	correction := 1 - tieSum/(nf*nf*nf-nf)
	if correction <= 0 {
		return KruskalResult{}, ErrIdenticalValues
	}

	var sum float64
	for gi, r := range rankSums {
		sum += r * r / float64(sizes[gi])
	}
	h := (12/(nf*(nf+1))*sum - 3*(nf+1)) / correction

	df := k - 1
	return KruskalResult{
		H:  h,
		P:  distuv.ChiSquared{K: float64(df)}.Survival(h),
		DF: df,
		N:  n,
	}, nil
}
