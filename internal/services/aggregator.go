package services

import (
	"sort"

	"alfredoptarigan/resume-screener/internal/models"
)

// Rank orders match results by overall score descending. The sort is stable,
// so equal scores keep their submission order. Pure: no I/O, and an empty
// input yields an empty ranking, never an error.
func Rank(results []models.MatchResult) models.RankedResults {
	ranked := make(models.RankedResults, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore > ranked[j].OverallScore
	})

	return ranked
}
