package matching

import (
	"sort"

	"github.com/jonathan/relocation-matcher/internal/types"
)

// Rank sorts scored properties by overall score, highest first. Ties keep
// their input order. The slice is sorted in place and returned.
func Rank(scored []types.ScoredProperty) []types.ScoredProperty {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AIScore > scored[j].AIScore
	})
	return scored
}

// ScoreAll scores every property against answers, preserving input order.
func (s *Scorer) ScoreAll(properties []types.Property, answers types.AnswerSet) []types.ScoredProperty {
	out := make([]types.ScoredProperty, 0, len(properties))
	for _, p := range properties {
		score := s.Score(p, answers)
		out = append(out, types.ScoredProperty{
			Property:       p,
			AIScore:        score.Overall,
			MatchReasons:   score.Reasons,
			ScoreBreakdown: score.Breakdown,
		})
	}
	return out
}
