package vibes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/llm"
	"github.com/jonathan/relocation-matcher/internal/metrics"
	"github.com/jonathan/relocation-matcher/internal/prompts"
	"github.com/jonathan/relocation-matcher/internal/schemas"
)

// DefaultScore is used for a known category the model did not score.
const DefaultScore = 50

var (
	// ErrInvalidPayload means the model's answer was not a usable score object.
	ErrInvalidPayload = errors.New("invalid vibe payload")
	// ErrEmptyArea is returned when no area name was given.
	ErrEmptyArea = errors.New("area is required")
)

// Assessment is the full vibe picture for an area.
type Assessment struct {
	Area    string                    `json:"area"`
	Summary string                    `json:"summary,omitempty"`
	Base    map[string]int            `json:"base_scores"`
	Periods map[Period]map[string]int `json:"periods"`
}

// Source produces an Assessment for an area.
type Source interface {
	Assess(ctx context.Context, area string) (*Assessment, error)
}

// Generator asks a language model for base scores and derives the periods.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

type payload struct {
	Scores  map[string]float64 `json:"scores"`
	Summary string             `json:"summary"`
}

// Assess implements Source.
func (g *Generator) Assess(ctx context.Context, area string) (*Assessment, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, ErrEmptyArea
	}

	prompt, err := prompts.Render("vibes.json", "score-area", map[string]string{"Area": area})
	if err != nil {
		return nil, fmt.Errorf("failed to build vibe prompt: %w", err)
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		metrics.VibeGenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate vibe scores for %s: %w", area, err)
	}

	p, err := parsePayload(llm.CleanJSONBlock(raw))
	if err != nil {
		metrics.VibeGenerationsTotal.WithLabelValues("invalid").Inc()
		g.logger.Warn("model returned an unusable vibe payload",
			zap.String("area", area),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.VibeGenerationsTotal.WithLabelValues("ok").Inc()
	return NewAssessment(area, p.Summary, p.Scores), nil
}

func parsePayload(raw string) (*payload, error) {
	if err := schemas.Validate(schemas.VibePayload, []byte(raw)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return &p, nil
}

// NewAssessment clamps scores, fills unscored known categories with
// DefaultScore and computes every period. Periods are derived from the
// unrounded base; only the reported base scores are rounded.
func NewAssessment(area, summary string, scores map[string]float64) *Assessment {
	base := make(map[string]float64, len(scores)+len(Categories()))
	for _, c := range Categories() {
		base[c] = DefaultScore
	}
	for c, v := range scores {
		base[c] = clamp(v)
	}

	baseInts := make(map[string]int, len(base))
	for c, v := range base {
		baseInts[c] = int(math.Round(v))
	}

	return &Assessment{
		Area:    area,
		Summary: strings.TrimSpace(summary),
		Base:    baseInts,
		Periods: AdjustAll(base),
	}
}
