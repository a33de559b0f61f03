package types

import (
	"time"

	"github.com/google/uuid"
)

// ScoreBreakdown holds the five factor scores, each in [0,100].
type ScoreBreakdown struct {
	Budget      int `json:"budget"`
	Lifestyle   int `json:"lifestyle"`
	Environment int `json:"environment"`
	Workstyle   int `json:"workstyle"`
	Family      int `json:"family"`
}

// MatchScore is the aggregated score of one property against one answer set.
type MatchScore struct {
	Overall   int            `json:"overall"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reasons   []string       `json:"reasons"`
}

// ScoredProperty is a property plus its match score, in the wire shape
// returned by the matching endpoint.
type ScoredProperty struct {
	Property
	AIScore        int            `json:"ai_score"`
	MatchReasons   []string       `json:"match_reasons"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

// Score returns the MatchScore view of the scored property.
func (s *ScoredProperty) Score() MatchScore {
	return MatchScore{
		Overall:   s.AIScore,
		Breakdown: s.ScoreBreakdown,
		Reasons:   s.MatchReasons,
	}
}

// MatchResponse is the body returned by POST /api/ai-match.
type MatchResponse struct {
	Success    bool             `json:"success"`
	Properties []ScoredProperty `json:"properties"`
}

// MatchResult is a persisted top-N match for a user.
type MatchResult struct {
	UserID     uuid.UUID      `json:"user_id"`
	PropertyID uuid.UUID      `json:"property_id"`
	Overall    int            `json:"ai_score"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`
	Reasons    []string       `json:"match_reasons"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
