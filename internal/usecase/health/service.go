package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status        Status
	Checks        map[string]CheckResult
	EngineVersion string
	Catalogs      int
}

// Service coordinates health checks.
type Service struct {
	engine   EngineProber
	catalogs CatalogCounter
}

// New creates a Service. catalogs can be nil.
func New(engine EngineProber, catalogs CatalogCounter) *Service {
	return &Service{engine: engine, catalogs: catalogs}
}

// Check probes the engine root and, when it answers, the index listing.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	v, err := s.engine.Info(ctx)
	if err != nil {
		r.Checks["search_engine"] = CheckError
		r.Status = Unhealthy
		return r
	}
	r.Checks["search_engine"] = CheckOK
	r.EngineVersion = v.String()

	if s.catalogs != nil {
		names, err := s.catalogs.Aliases(ctx)
		if err != nil {
			r.Checks["catalogs"] = CheckError
			r.Status = Degraded
		} else {
			r.Checks["catalogs"] = CheckOK
			r.Catalogs = len(names)
		}
	}

	return r
}
