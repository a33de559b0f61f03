package matching

import "github.com/jonathan/relocation-matcher/internal/types"

// Factor weights in percent. They sum to 100.
const (
	WeightBudget      = 30
	WeightLifestyle   = 25
	WeightEnvironment = 20
	WeightWorkstyle   = 15
	WeightFamily      = 10
)

// Aggregate combines the five factor results into a MatchScore.
//
// The overall score is the weighted sum rounded half up, computed in integers
// so the result does not depend on floating point representation. Reasons keep
// factor order with duplicates removed.
func Aggregate(budget, lifestyle, environment, workstyle, family FactorResult) types.MatchScore {
	breakdown := types.ScoreBreakdown{
		Budget:      clampScore(budget.Score),
		Lifestyle:   clampScore(lifestyle.Score),
		Environment: clampScore(environment.Score),
		Workstyle:   clampScore(workstyle.Score),
		Family:      clampScore(family.Score),
	}

	weighted := WeightBudget*breakdown.Budget +
		WeightLifestyle*breakdown.Lifestyle +
		WeightEnvironment*breakdown.Environment +
		WeightWorkstyle*breakdown.Workstyle +
		WeightFamily*breakdown.Family

	reasons := make([]string, 0, 5)
	seen := make(map[string]struct{}, 5)
	for _, f := range []FactorResult{budget, lifestyle, environment, workstyle, family} {
		for _, r := range f.Reasons {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			reasons = append(reasons, r)
		}
	}

	return types.MatchScore{
		Overall:   clampScore((weighted + 50) / 100),
		Breakdown: breakdown,
		Reasons:   reasons,
	}
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
