package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/metrics"
	"github.com/jonathan/relocation-matcher/internal/types"
)

// CatalogKey is the Redis key holding the cached property list.
const CatalogKey = "catalog:properties"

// PropertySource is the uncached catalog, normally the database.
type PropertySource interface {
	ListProperties(ctx context.Context) ([]types.Property, error)
}

// CatalogCache is a read-through cache in front of a PropertySource.
type CatalogCache struct {
	source PropertySource
	client *Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache creates a CatalogCache.
func NewCatalogCache(source PropertySource, client *Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{source: source, client: client, ttl: ttl, logger: logger}
}

// ListProperties returns the cached catalog, loading and caching it on a miss.
// Errors from the source are returned unchanged.
func (c *CatalogCache) ListProperties(ctx context.Context) ([]types.Property, error) {
	var cached []types.Property
	hit, err := c.client.GetJSON(ctx, CatalogKey, &cached)
	switch {
	case err != nil:
		metrics.CacheTotal.WithLabelValues("catalog", "error").Inc()
		c.logger.Warn("catalog cache read failed", zap.Error(err))
	case hit:
		metrics.CacheTotal.WithLabelValues("catalog", "hit").Inc()
		return cached, nil
	default:
		metrics.CacheTotal.WithLabelValues("catalog", "miss").Inc()
	}

	properties, err := c.source.ListProperties(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.client.SetJSON(ctx, CatalogKey, properties, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return properties, nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, CatalogKey)
}
