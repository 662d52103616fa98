package catalog

import (
	"context"

	"github.com/theduckylittle/registry/internal/domain/engine"
)

// Engine manages indexes and stores documents.
type Engine interface {
	CreateIndex(ctx context.Context, name string, mapping map[string]any) error
	DeleteIndex(ctx context.Context, name string) error
	Aliases(ctx context.Context) ([]string, error)
	IndexDocument(ctx context.Context, v engine.Version, index, id string, doc map[string]any) error
}

// VersionSource reports the engine version used to shape mappings and document paths.
type VersionSource interface {
	Version(ctx context.Context) (engine.Version, error)
}
