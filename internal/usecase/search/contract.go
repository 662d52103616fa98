package search

import (
	"context"

	"github.com/theduckylittle/registry/internal/db"
	"github.com/theduckylittle/registry/internal/domain/engine"
)

// Engine runs compiled queries.
type Engine interface {
	Search(ctx context.Context, index string, body []byte) (*db.SearchResponse, error)
}

// VersionSource reports the engine version used to pick the query dialect.
type VersionSource interface {
	Version(ctx context.Context) (engine.Version, error)
}
