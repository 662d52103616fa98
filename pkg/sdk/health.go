package registry

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status        string            // "ok", "degraded", "error"
	Checks        map[string]string // component → "ok"/"error"
	EngineVersion string
	Catalogs      int
}

// Health checks the search engine and the index listing.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:        string(report.Status),
		Checks:        checks,
		EngineVersion: report.EngineVersion,
		Catalogs:      report.Catalogs,
	}
}

// Ping reports an error unless the search engine is reachable.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	h := c.Health(ctx)
	if h.Checks["search_engine"] != "ok" {
		return fmt.Errorf("registry: ping: %w", ErrEngineUnreachable)
	}
	return nil
}
