package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
)

func TestRankSortsByScoreDescending(t *testing.T) {
	results := []models.MatchResult{
		{Resume: "low.pdf", OverallScore: 40},
		{Resume: "high.pdf", OverallScore: 90},
		{Resume: "mid.pdf", OverallScore: 65},
	}

	ranked := Rank(results)

	require.Len(t, ranked, 3)
	assert.Equal(t, "high.pdf", ranked[0].Resume)
	assert.Equal(t, "mid.pdf", ranked[1].Resume)
	assert.Equal(t, "low.pdf", ranked[2].Resume)
}

func TestRankStableOnTies(t *testing.T) {
	results := []models.MatchResult{
		{Resume: "first.pdf", OverallScore: 70},
		{Resume: "second.pdf", OverallScore: 70},
		{Resume: "third.pdf", OverallScore: 70},
	}

	ranked := Rank(results)

	require.Len(t, ranked, 3)
	// Equal scores keep submission order
	assert.Equal(t, "first.pdf", ranked[0].Resume)
	assert.Equal(t, "second.pdf", ranked[1].Resume)
	assert.Equal(t, "third.pdf", ranked[2].Resume)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	results := []models.MatchResult{
		{Resume: "a.pdf", OverallScore: 10},
		{Resume: "b.pdf", OverallScore: 99},
	}

	Rank(results)

	assert.Equal(t, "a.pdf", results[0].Resume)
	assert.Equal(t, "b.pdf", results[1].Resume)
}

func TestRankEmptyInput(t *testing.T) {
	ranked := Rank(nil)

	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
