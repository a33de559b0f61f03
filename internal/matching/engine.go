package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/relocation-matcher/internal/metrics"
	"github.com/jonathan/relocation-matcher/internal/regions"
	"github.com/jonathan/relocation-matcher/internal/types"
)

// Result limits.
const (
	DisplayLimit = 10
	PersistLimit = 5
)

// ErrCatalogUnavailable is returned when the property catalog cannot be read.
var ErrCatalogUnavailable = errors.New("property catalog unavailable")

// Catalog lists the candidate properties.
type Catalog interface {
	ListProperties(ctx context.Context) ([]types.Property, error)
}

// ResultSink stores a user's top match results. Writes for the same
// (userID, propertyID) pair must overwrite.
type ResultSink interface {
	UpsertMatchResult(ctx context.Context, userID, propertyID uuid.UUID, score types.MatchScore) error
}

// Engine runs a full matching pass: fetch, score, rank, persist, truncate.
type Engine struct {
	catalog Catalog
	sink    ResultSink
	scorer  *Scorer
	logger  *zap.Logger
}

// NewEngine creates an Engine. sink may be nil, in which case nothing is persisted.
func NewEngine(catalog Catalog, sink ResultSink, table *regions.Table, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: catalog,
		sink:    sink,
		scorer:  NewScorer(table),
		logger:  logger,
	}
}

// Scorer exposes the engine's factor scorer.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// Match scores the whole catalog for userID, persists the top PersistLimit
// results best-effort and returns the top DisplayLimit.
//
// Only a catalog failure is returned as an error. Persistence failures are
// logged and counted and never change the response.
func (e *Engine) Match(ctx context.Context, userID uuid.UUID, answers types.AnswerSet) ([]types.ScoredProperty, error) {
	properties, err := e.catalog.ListProperties(ctx)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	metrics.MatchCandidates.Observe(float64(len(properties)))

	ranked := Rank(e.scorer.ScoreAll(properties, answers))

	e.persist(ctx, userID, ranked[:min(PersistLimit, len(ranked))])

	metrics.MatchRequestsTotal.WithLabelValues("ok").Inc()
	return ranked[:min(DisplayLimit, len(ranked))], nil
}

// persist writes the given results concurrently and waits for all of them.
func (e *Engine) persist(ctx context.Context, userID uuid.UUID, top []types.ScoredProperty) {
	if e.sink == nil || len(top) == 0 {
		return
	}

	var g errgroup.Group
	for i := range top {
		sp := &top[i]
		g.Go(func() error {
			if err := e.sink.UpsertMatchResult(ctx, userID, sp.ID, sp.Score()); err != nil {
				metrics.MatchPersistFailuresTotal.Inc()
				e.logger.Warn("failed to persist match result",
					zap.String("user_id", userID.String()),
					zap.String("property_id", sp.ID.String()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
