package cache

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/metrics"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

const vibeKeyPrefix = "vibes:"

// VibeCache caches assessments per area in front of a vibes.Source.
type VibeCache struct {
	source vibes.Source
	client *Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewVibeCache creates a VibeCache.
func NewVibeCache(source vibes.Source, client *Client, ttl time.Duration, logger *zap.Logger) *VibeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VibeCache{source: source, client: client, ttl: ttl, logger: logger}
}

// VibeKey returns the cache key for an area. Area names are compared
// case-insensitively after trimming.
func VibeKey(area string) string {
	return vibeKeyPrefix + strings.ToLower(strings.TrimSpace(area))
}

// Assess implements vibes.Source.
func (c *VibeCache) Assess(ctx context.Context, area string) (*vibes.Assessment, error) {
	if strings.TrimSpace(area) == "" {
		return c.source.Assess(ctx, area)
	}
	key := VibeKey(area)

	var cached vibes.Assessment
	hit, err := c.client.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheTotal.WithLabelValues("vibes", "error").Inc()
		c.logger.Warn("vibe cache read failed", zap.String("area", area), zap.Error(err))
	case hit:
		metrics.CacheTotal.WithLabelValues("vibes", "hit").Inc()
		return &cached, nil
	default:
		metrics.CacheTotal.WithLabelValues("vibes", "miss").Inc()
	}

	assessment, err := c.source.Assess(ctx, area)
	if err != nil {
		return nil, err
	}

	if err := c.client.SetJSON(ctx, key, assessment, c.ttl); err != nil {
		c.logger.Warn("vibe cache write failed", zap.String("area", area), zap.Error(err))
	}
	return assessment, nil
}
