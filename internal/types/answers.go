package types

import "github.com/go-playground/validator/v10"

// Work mode answers (q1).
const (
	WorkModeRemoteMajority = "remote_majority"
	WorkModeHybrid         = "hybrid"
	WorkModeOnsite         = "onsite"
)

// Household answers (q3).
const (
	HouseholdSingle       = "single"
	HouseholdCouple       = "couple"
	HouseholdWithChildren = "with_children"
)

// Priority answers (q4).
const (
	PriorityNature    = "nature"
	PriorityEducation = "education"
	PriorityMedical   = "medical"
	PriorityCommunity = "community"
)

// Budget brackets (q5), monthly cost in yen.
const (
	BudgetUnder150k  = "under_150k"
	Budget150kTo250k = "150k_250k"
	Budget250kTo350k = "250k_350k"
	BudgetOver350k   = "over_350k"
)

// AnswerSet is the sparse set of diagnostic answers. An empty field means the
// question was not answered. Only q1, q3, q4 and q5 affect matching; the rest
// are kept so the diagnosis can be stored as submitted.
type AnswerSet struct {
	WorkMode        string `json:"q1_work_mode,omitempty" validate:"omitempty,oneof=remote_majority hybrid onsite"`
	IncomeStability string `json:"q2_income_stability,omitempty" validate:"max=64"`
	Household       string `json:"q3_household,omitempty" validate:"omitempty,oneof=single couple with_children"`
	Priority        string `json:"q4_priority,omitempty" validate:"omitempty,oneof=nature education medical community"`
	Budget          string `json:"q5_budget,omitempty" validate:"omitempty,oneof=under_150k 150k_250k 250k_350k over_350k"`
	Duration        string `json:"q6_duration,omitempty" validate:"max=64"`
	Timing          string `json:"q7_timing,omitempty" validate:"max=64"`
}

// IsEmpty reports whether no question was answered.
func (a AnswerSet) IsEmpty() bool {
	return a == AnswerSet{}
}

// Validate checks that every answered question uses a known value.
// Matching itself tolerates unknown values; this is for stored diagnoses.
func (a *AnswerSet) Validate() error {
	return validator.New().Struct(a)
}
