package health

import (
	"context"

	"github.com/theduckylittle/registry/internal/domain/engine"
)

// EngineProber checks search engine availability.
type EngineProber interface {
	Info(ctx context.Context) (engine.Version, error)
}

// CatalogCounter counts catalog indexes. Optional.
type CatalogCounter interface {
	Aliases(ctx context.Context) ([]string, error)
}
