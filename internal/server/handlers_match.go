package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/schemas"
	"github.com/jonathan/relocation-matcher/internal/server/middleware"
	"github.com/jonathan/relocation-matcher/internal/types"
)

const maxBodyBytes = 1 << 20

// readAnswers parses an AnswerSet body. Missing keys are fine; non-string
// values are a validation error. sent is false when the body is empty.
func readAnswers(r *http.Request) (answers types.AnswerSet, sent bool, err error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return answers, false, &ErrValidation{Message: "could not read request body"}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return answers, false, nil
	}
	if !json.Valid(body) {
		return answers, true, &ErrValidation{Message: "body must be a JSON object"}
	}
	if err := schemas.Validate(schemas.AnswerSet, body); err != nil {
		return answers, true, &ErrValidation{Message: fmt.Sprintf("answers must be strings: %v", err)}
	}
	if err := json.Unmarshal(body, &answers); err != nil {
		return answers, true, &ErrValidation{Message: "body must be a JSON object"}
	}
	return answers, true, nil
}

// handleAIMatch handles POST /api/ai-match. A request without a body falls
// back to the caller's latest stored diagnosis; an explicit {} is matched as
// an empty answer set.
func (s *Server) handleAIMatch(w http.ResponseWriter, r *http.Request) {
	log := logpkg.FromContext(r.Context())

	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.failure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	answers, sent, err := readAnswers(r)
	if err != nil {
		s.failure(w, HTTPStatus(err), err.Error())
		return
	}

	if !sent {
		latest, err := s.deps.Answers.GetLatestAnswers(r.Context(), userID)
		if err != nil {
			log.Warn("failed to load stored answers, matching without them",
				zap.String("user_id", userID.String()), zap.Error(err))
		} else if latest != nil {
			answers = latest.Answers
		}
	}

	results, err := s.match(r.Context(), log, userID, answers)
	if err != nil {
		log.Error("matching failed", zap.String("user_id", userID.String()), zap.Error(err))
		s.failure(w, http.StatusInternalServerError, "matching failed")
		return
	}
	if results == nil {
		results = []types.ScoredProperty{}
	}

	writeJSON(w, http.StatusOK, types.MatchResponse{Success: true, Properties: results})
}

// match runs the matcher and reports a panic inside it as an error, so that
// every pipeline failure gets the same response.
func (s *Server) match(ctx context.Context, log *zap.Logger, userID uuid.UUID, answers types.AnswerSet) (results []types.ScoredProperty, err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		log.Error("panic in matching pipeline",
			zap.Any("panic", rec),
			zap.ByteString("stack", debug.Stack()),
		)
		results, err = nil, fmt.Errorf("matching panicked: %v", rec)
	}()
	return s.deps.Matcher.Match(ctx, userID, answers)
}

// handleListMatches handles GET /api/matches.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.failure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	results, err := s.deps.Results.ListMatchResults(r.Context(), userID)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to list match results", zap.Error(err))
		s.failure(w, http.StatusInternalServerError, "failed to list match results")
		return
	}
	if results == nil {
		results = []types.MatchResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}
