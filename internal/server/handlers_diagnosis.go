package server

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/server/middleware"
)

// handleSaveDiagnosis handles POST /api/diagnosis. Stored answers must use
// known values.
func (s *Server) handleSaveDiagnosis(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.failure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	answers, _, err := readAnswers(r)
	if err != nil {
		s.failure(w, HTTPStatus(err), err.Error())
		return
	}
	if answers.IsEmpty() {
		s.failure(w, http.StatusBadRequest, "at least one answer is required")
		return
	}
	if err := answers.Validate(); err != nil {
		s.failure(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	stored, err := s.deps.Answers.SaveAnswers(r.Context(), userID, answers)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to save diagnosis", zap.Error(err))
		s.failure(w, http.StatusInternalServerError, "failed to save diagnosis")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "diagnosis": stored})
}

// handleLatestDiagnosis handles GET /api/diagnosis/latest.
func (s *Server) handleLatestDiagnosis(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.failure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stored, err := s.deps.Answers.GetLatestAnswers(r.Context(), userID)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to load diagnosis", zap.Error(err))
		s.failure(w, http.StatusInternalServerError, "failed to load diagnosis")
		return
	}
	if stored == nil {
		s.failure(w, http.StatusNotFound, "no diagnosis found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "diagnosis": stored})
}
