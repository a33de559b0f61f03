// Package matching scores catalog properties against a user's diagnostic answers.
//
// Five independent factor scorers each produce a score in [0,100] and zero or
// more reasons. The aggregator combines them with fixed weights and the ranker
// orders properties by the combined score.
package matching

import (
	"math"

	"github.com/jonathan/relocation-matcher/internal/regions"
	"github.com/jonathan/relocation-matcher/internal/types"
)

// Neutral is the score a factor gets when its question was not answered.
const Neutral = 50

// FactorResult is the output of one factor scorer.
type FactorResult struct {
	Score   int
	Reasons []string
}

func neutral() FactorResult {
	return FactorResult{Score: Neutral}
}

// Reason strings, one per matched rule.
const (
	ReasonBudgetFit        = "Monthly cost fits your budget"
	ReasonNature           = "Surrounded by rich nature"
	ReasonEducation        = "Strong educational environment"
	ReasonMedical          = "Good access to medical care"
	ReasonCommunity        = "Welcoming local community"
	ReasonFamilyFriendly   = "Family-friendly area"
	ReasonUrban            = "Convenient urban location"
	ReasonRemoteWork       = "Well suited to remote work"
	ReasonFamilySpace      = "Spacious enough for a family"
	ReasonSingleAffordable = "Affordable size for living alone"
)

// costRange is an inclusive monthly cost bracket in yen.
type costRange struct {
	min, max int
}

func (r costRange) contains(cost int) bool {
	return cost >= r.min && cost <= r.max
}

// Brackets share their boundaries, so a cost of exactly 250000 falls in both
// 150k_250k and 250k_350k.
var budgetBrackets = map[string]costRange{
	types.BudgetUnder150k:  {min: math.MinInt, max: 150000},
	types.Budget150kTo250k: {min: 150000, max: 250000},
	types.Budget250kTo350k: {min: 250000, max: 350000},
	types.BudgetOver350k:   {min: 350000, max: math.MaxInt},
}

var priorityReasons = map[string]string{
	types.PriorityNature:    ReasonNature,
	types.PriorityEducation: ReasonEducation,
	types.PriorityMedical:   ReasonMedical,
	types.PriorityCommunity: ReasonCommunity,
}

// ScoreBudget scores a monthly cost against the q5 budget answer.
func ScoreBudget(monthlyCost int, budget string) FactorResult {
	if budget == "" {
		return neutral()
	}
	if r, ok := budgetBrackets[budget]; ok && r.contains(monthlyCost) {
		return FactorResult{Score: 100, Reasons: []string{ReasonBudgetFit}}
	}
	return FactorResult{Score: 30}
}

// ScoreFamily scores a monthly cost, as a proxy for dwelling size, against the q3 household answer.
func ScoreFamily(monthlyCost int, household string) FactorResult {
	if household == "" {
		return neutral()
	}
	switch {
	case household == types.HouseholdWithChildren && monthlyCost >= 250000:
		return FactorResult{Score: 85, Reasons: []string{ReasonFamilySpace}}
	case household == types.HouseholdSingle && monthlyCost <= 150000:
		return FactorResult{Score: 80, Reasons: []string{ReasonSingleAffordable}}
	}
	return FactorResult{Score: 60}
}

// Scorer holds the region-dependent factor scorers.
type Scorer struct {
	regions *regions.Table
}

// NewScorer returns a Scorer backed by table, or by the embedded table when table is nil.
func NewScorer(table *regions.Table) *Scorer {
	if table == nil {
		table = regions.Default()
	}
	return &Scorer{regions: table}
}

// ScoreLifestyle checks the q4 priority against the region's characteristics.
func (s *Scorer) ScoreLifestyle(region, priority string) FactorResult {
	if priority == "" {
		return neutral()
	}
	if s.regions.HasCharacteristic(region, regions.Characteristic(priority)) {
		if reason, ok := priorityReasons[priority]; ok {
			return FactorResult{Score: 90, Reasons: []string{reason}}
		}
	}
	return FactorResult{Score: 50}
}

// ScoreEnvironment checks the q3 household against the family-friendly and urban region sets.
func (s *Scorer) ScoreEnvironment(region, household string) FactorResult {
	if household == "" {
		return neutral()
	}
	switch household {
	case types.HouseholdWithChildren:
		if s.regions.IsFamilyFriendly(region) {
			return FactorResult{Score: 85, Reasons: []string{ReasonFamilyFriendly}}
		}
	case types.HouseholdCouple, types.HouseholdSingle:
		if s.regions.IsUrban(region) {
			return FactorResult{Score: 80, Reasons: []string{ReasonUrban}}
		}
	}
	return FactorResult{Score: 50}
}

// ScoreWorkstyle checks the q1 work mode against the remote-ideal region set.
func (s *Scorer) ScoreWorkstyle(region, workMode string) FactorResult {
	if workMode == "" {
		return neutral()
	}
	if workMode == types.WorkModeRemoteMajority && s.regions.IsRemoteIdeal(region) {
		return FactorResult{Score: 90, Reasons: []string{ReasonRemoteWork}}
	}
	return FactorResult{Score: 70}
}

// Score runs all five factors and aggregates them.
func (s *Scorer) Score(p types.Property, answers types.AnswerSet) types.MatchScore {
	return Aggregate(
		ScoreBudget(p.MonthlyCost, answers.Budget),
		s.ScoreLifestyle(p.Region, answers.Priority),
		s.ScoreEnvironment(p.Region, answers.Household),
		s.ScoreWorkstyle(p.Region, answers.WorkMode),
		ScoreFamily(p.MonthlyCost, answers.Household),
	)
}
