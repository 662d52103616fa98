// Package engineversion caches the search engine version used to pick the query dialect.
package engineversion

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/engine"
	"github.com/theduckylittle/registry/internal/metrics"
)

// Prober reads the engine version from its root endpoint.
type Prober interface {
	Info(ctx context.Context) (engine.Version, error)
}

// Cache holds the last probed version for a TTL.
// Concurrent misses share one probe. A zero TTL probes on every call.
type Cache struct {
	prober Prober
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	version engine.Version
	expires time.Time
	valid   bool
	gen     uint64

	group singleflight.Group
}

// New creates a Cache.
func New(prober Prober, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{prober: prober, ttl: ttl, logger: logger, now: time.Now}
}

// Version returns the cached version or probes the engine.
// An unreachable engine is an error; an engine that answers without a usable
// version yields engine.Fallback, which is not cached.
func (c *Cache) Version(ctx context.Context) (engine.Version, error) {
	c.mu.RLock()
	if c.valid && c.now().Before(c.expires) {
		v := c.version
		c.mu.RUnlock()
		metrics.EngineVersionLookupsTotal.WithLabelValues("hit").Inc()
		return v, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	res, err, _ := c.group.Do("version", func() (any, error) {
		return c.probe(ctx, gen)
	})
	if err != nil {
		return engine.Version{}, err
	}
	return res.(engine.Version), nil //nolint:forcetypeassert // probe only returns engine.Version
}

func (c *Cache) probe(ctx context.Context, gen uint64) (engine.Version, error) {
	v, err := c.prober.Info(ctx)
	switch {
	case errors.Is(err, domain.ErrEngineUnreachable):
		return engine.Version{}, err
	case err != nil:
		metrics.EngineVersionLookupsTotal.WithLabelValues("fallback").Inc()
		c.logger.Warn("engine version probe failed, assuming fallback",
			zap.String("fallback", engine.Fallback.String()),
			zap.Error(err),
		)
		return engine.Fallback, nil
	}

	metrics.EngineVersionLookupsTotal.WithLabelValues("miss").Inc()
	if c.ttl <= 0 {
		return v, nil
	}

	c.mu.Lock()
	// An Invalidate during the probe wins over the result.
	if c.gen == gen {
		c.version = v
		c.expires = c.now().Add(c.ttl)
		c.valid = true
	}
	c.mu.Unlock()

	c.logger.Debug("engine version cached",
		zap.String("version", v.String()),
		zap.Stringer("dialect", v.Dialect()),
	)
	return v, nil
}

// Invalidate drops the cached version; the next call probes again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.gen++
	c.mu.Unlock()
}
