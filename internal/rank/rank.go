package rank

import (
	"sort"

	"github.com/hetulpatel/moneylinearb/internal/matches"
)

// Rank orders results for presentation: opportunities first by descending profit,
// then non-opportunities in their input order. The input is not modified.
func Rank(results []matches.Result) []matches.Result {
	out := make([]matches.Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasOpportunity != b.HasOpportunity {
			return a.HasOpportunity
		}
		if a.HasOpportunity {
			return a.ProfitPercent > b.ProfitPercent
		}
		return false
	})
	return out
}

// Opportunities returns only the results that carry a hedge, in ranked order.
func Opportunities(results []matches.Result) []matches.Result {
	var out []matches.Result
	for _, r := range Rank(results) {
		if r.HasOpportunity {
			out = append(out, r)
		}
	}
	return out
}
