package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	logpkg "github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

var requestValidator = validator.New()

type vibeRequest struct {
	Area string `json:"area" validate:"required,max=100"`
}

type vibeResponse struct {
	Success bool `json:"success"`
	*vibes.Assessment
}

// handleCalculateVibes handles POST /api/vibes/calculate.
func (s *Server) handleCalculateVibes(w http.ResponseWriter, r *http.Request) {
	if s.deps.Vibes == nil {
		s.failure(w, http.StatusServiceUnavailable, "vibe calculation unavailable")
		return
	}

	var req vibeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.failure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := requestValidator.Struct(req); err != nil {
		s.failure(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	assessment, err := s.deps.Vibes.Assess(r.Context(), req.Area)
	switch {
	case errors.Is(err, vibes.ErrEmptyArea):
		s.failure(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, vibes.ErrInvalidPayload):
		logpkg.FromContext(r.Context()).Warn("vibe payload rejected", zap.String("area", req.Area), zap.Error(err))
		s.failure(w, http.StatusBadGateway, "vibe generation failed")
		return
	case err != nil:
		logpkg.FromContext(r.Context()).Error("vibe generation failed", zap.String("area", req.Area), zap.Error(err))
		s.failure(w, http.StatusInternalServerError, "vibe generation failed")
		return
	}

	writeJSON(w, http.StatusOK, vibeResponse{Success: true, Assessment: assessment})
}
