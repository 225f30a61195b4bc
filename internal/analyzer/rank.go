package analyzer

import (
	"cmp"
	"slices"

	"github.com/nao1215/kakusu/internal/model"
)

// Rank sorts results by composite score, highest first, and returns at most
// limit of them. Equal scores keep generation order (Index). The input
// slice is sorted in place.
func Rank(results []model.CandidateResult, limit int) []model.CandidateResult {
	slices.SortStableFunc(results, func(a, b model.CandidateResult) int {
		if c := cmp.Compare(b.CompositeScore, a.CompositeScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return slices.Clip(results)
}
