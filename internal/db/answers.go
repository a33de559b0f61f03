package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/relocation-matcher/internal/types"
)

// SaveAnswers stores a diagnosis for the user.
func (db *DB) SaveAnswers(ctx context.Context, userID uuid.UUID, answers types.AnswerSet) (*StoredAnswers, error) {
	jsonBytes, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	stored := StoredAnswers{UserID: userID, Answers: answers}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO diagnosis_answers (user_id, answers)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, jsonBytes,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}
	return &stored, nil
}

// GetLatestAnswers returns the user's most recent diagnosis, or nil.
func (db *DB) GetLatestAnswers(ctx context.Context, userID uuid.UUID) (*StoredAnswers, error) {
	var stored StoredAnswers
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, answers, created_at
		 FROM diagnosis_answers
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&stored.ID, &stored.UserID, &content, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest answers: %w", err)
	}

	if err := json.Unmarshal(content, &stored.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	return &stored, nil
}
