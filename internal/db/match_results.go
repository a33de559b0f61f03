package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/relocation-matcher/internal/types"
)

// UpsertMatchResult stores one scored property for a user, replacing any
// earlier result for the same pair.
func (db *DB) UpsertMatchResult(ctx context.Context, userID, propertyID uuid.UUID, score types.MatchScore) error {
	reasons := score.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	b := score.Breakdown
	_, err = db.pool.Exec(ctx,
		`INSERT INTO match_results
		   (user_id, property_id, overall, budget_score, lifestyle_score, environment_score, workstyle_score, family_score, reasons)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, property_id) DO UPDATE SET
		   overall = EXCLUDED.overall,
		   budget_score = EXCLUDED.budget_score,
		   lifestyle_score = EXCLUDED.lifestyle_score,
		   environment_score = EXCLUDED.environment_score,
		   workstyle_score = EXCLUDED.workstyle_score,
		   family_score = EXCLUDED.family_score,
		   reasons = EXCLUDED.reasons,
		   updated_at = NOW()`,
		userID, propertyID, score.Overall, b.Budget, b.Lifestyle, b.Environment, b.Workstyle, b.Family, reasonsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match result: %w", err)
	}
	return nil
}

// ListMatchResults returns the user's stored results, best first.
func (db *DB) ListMatchResults(ctx context.Context, userID uuid.UUID) ([]types.MatchResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, property_id, overall, budget_score, lifestyle_score, environment_score, workstyle_score, family_score, reasons, updated_at
		 FROM match_results
		 WHERE user_id = $1
		 ORDER BY overall DESC, updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	results := []types.MatchResult{}
	for rows.Next() {
		var r types.MatchResult
		var reasons []byte
		b := &r.Breakdown
		if err := rows.Scan(&r.UserID, &r.PropertyID, &r.Overall, &b.Budget, &b.Lifestyle, &b.Environment, &b.Workstyle, &b.Family, &reasons, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		if err := json.Unmarshal(reasons, &r.Reasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	return results, nil
}
