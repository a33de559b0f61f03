package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/authz"
	"github.com/jonathan/relocation-matcher/internal/db"
	logpkg "github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/matching"
	"github.com/jonathan/relocation-matcher/internal/metrics"
	"github.com/jonathan/relocation-matcher/internal/server/middleware"
	"github.com/jonathan/relocation-matcher/internal/server/ratelimit"
	"github.com/jonathan/relocation-matcher/internal/types"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

// Matcher runs a matching pass for a user.
type Matcher interface {
	Match(ctx context.Context, userID uuid.UUID, answers types.AnswerSet) ([]types.ScoredProperty, error)
}

// PropertyStore reads and edits single catalog entries.
type PropertyStore interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*types.Property, error)
	CreateProperty(ctx context.Context, in types.PropertyInput) (*types.Property, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, in types.PropertyInput) (*types.Property, error)
	DeleteProperty(ctx context.Context, id uuid.UUID) (bool, error)
}

// CatalogInvalidator drops a cached catalog after an edit.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AnswerStore keeps submitted diagnoses.
type AnswerStore interface {
	SaveAnswers(ctx context.Context, userID uuid.UUID, answers types.AnswerSet) (*db.StoredAnswers, error)
	GetLatestAnswers(ctx context.Context, userID uuid.UUID) (*db.StoredAnswers, error)
}

// ResultStore lists persisted match results.
type ResultStore interface {
	ListMatchResults(ctx context.Context, userID uuid.UUID) ([]types.MatchResult, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Logger      *zap.Logger
	Matcher     Matcher
	Catalog     matching.Catalog
	Properties  PropertyStore
	Invalidator CatalogInvalidator // optional
	Answers     AnswerStore
	Results     ResultStore
	Vibes       vibes.Source // optional; nil disables vibe calculation
	Users       *UserService
	JWT         *JWTService
	Policy      authz.Policy
	RateLimiter *ratelimit.Limiter // optional
	Health      Pinger             // optional
}

func (d *Deps) validate() error {
	switch {
	case d.Matcher == nil:
		return errors.New("matcher is required")
	case d.Catalog == nil:
		return errors.New("catalog is required")
	case d.Properties == nil:
		return errors.New("property store is required")
	case d.Answers == nil:
		return errors.New("answer store is required")
	case d.Results == nil:
		return errors.New("result store is required")
	case d.Users == nil || d.JWT == nil:
		return errors.New("user service and JWT service are required")
	case d.Policy == nil:
		return errors.New("admin policy is required")
	}
	return nil
}

// Config holds server configuration
type Config struct {
	Port int
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	deps        Deps
	logger      *zap.Logger
	authHandler *AuthHandler
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid server dependencies: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	metrics.Register()

	s := &Server{
		deps:        deps,
		logger:      deps.Logger,
		authHandler: NewAuthHandler(deps.Users, deps.JWT),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(metrics.Middleware())
	r.Use(s.withCORS)
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.authHandler.Register)
		r.Post("/auth/login", s.authHandler.Login)

		r.Get("/properties", s.handleListProperties)
		r.Get("/properties/{id}", s.handleGetProperty)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(s.deps.JWT.AsTokenValidator()))

			r.Get("/me", s.authHandler.Me)
			r.Post("/ai-match", s.handleAIMatch)
			r.Get("/matches", s.handleListMatches)
			r.Post("/diagnosis", s.handleSaveDiagnosis)
			r.Get("/diagnosis/latest", s.handleLatestDiagnosis)
			r.Post("/vibes/calculate", s.handleCalculateVibes)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/properties", s.handleCreateProperty)
				r.Put("/properties/{id}", s.handleUpdateProperty)
				r.Delete("/properties/{id}", s.handleDeleteProperty)
			})
		})
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.deps.RateLimiter != nil {
		s.deps.RateLimiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.RateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.deps.RateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			logpkg.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes data as a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse writes {"error": message}.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// failure writes the {"success": false, "error": message} envelope used by
// the matching and vibe endpoints.
func (s *Server) failure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	logpkg.FromContext(r.Context()).Info("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)
	writeJSON(w, http.StatusTooManyRequests, response)
}
