package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/types"
)

// handleListProperties handles GET /api/properties.
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.deps.Catalog.ListProperties(r.Context())
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to list properties", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	if properties == nil {
		properties = []types.Property{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": properties})
}

// handleGetProperty handles GET /api/properties/{id}.
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.propertyID(w, r)
	if !ok {
		return
	}

	property, err := s.deps.Properties.GetProperty(r.Context(), id)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to get property", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get property")
		return
	}
	if property == nil {
		s.errorResponse(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// handleCreateProperty handles POST /api/admin/properties.
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodePropertyInput(w, r)
	if !ok {
		return
	}

	property, err := s.deps.Properties.CreateProperty(r.Context(), in)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to create property", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create property")
		return
	}
	s.invalidateCatalog(r)
	writeJSON(w, http.StatusCreated, property)
}

// handleUpdateProperty handles PUT /api/admin/properties/{id}.
func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.propertyID(w, r)
	if !ok {
		return
	}
	in, ok := s.decodePropertyInput(w, r)
	if !ok {
		return
	}

	property, err := s.deps.Properties.UpdateProperty(r.Context(), id, in)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to update property", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	if property == nil {
		s.errorResponse(w, http.StatusNotFound, "property not found")
		return
	}
	s.invalidateCatalog(r)
	writeJSON(w, http.StatusOK, property)
}

// handleDeleteProperty handles DELETE /api/admin/properties/{id}.
func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.propertyID(w, r)
	if !ok {
		return
	}

	deleted, err := s.deps.Properties.DeleteProperty(r.Context(), id)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("failed to delete property", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "property not found")
		return
	}
	s.invalidateCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) propertyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid property id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decodePropertyInput(w http.ResponseWriter, r *http.Request) (types.PropertyInput, bool) {
	var in types.PropertyInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	if err := in.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return in, false
	}
	return in, true
}

// invalidateCatalog drops the cached catalog. A failure only delays
// visibility until the cache entry expires.
func (s *Server) invalidateCatalog(r *http.Request) {
	if s.deps.Invalidator == nil {
		return
	}
	if err := s.deps.Invalidator.Invalidate(r.Context()); err != nil {
		logpkg.FromContext(r.Context()).Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
