// Package db declares the search engine facade used by the use cases.
package db

import (
	"context"

	"github.com/theduckylittle/registry/internal/domain/engine"
)

// Engine is the search engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // use cases take the narrow sub-interfaces
type Engine interface {
	Prober
	Searcher
	IndexManager
	DocumentIndexer
}

// Prober reads the engine's root endpoint.
type Prober interface {
	Info(ctx context.Context) (engine.Version, error)
}

// SearchResponse is the engine's answer to a search, kept raw so it can be passed through.
type SearchResponse struct {
	URL    string
	Status int
	Body   []byte
}

// Searcher runs a compiled query against one index (or all of them when index is empty).
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*SearchResponse, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, name string, mapping map[string]any) error
	DeleteIndex(ctx context.Context, name string) error
	Aliases(ctx context.Context) ([]string, error)
}

// DocumentIndexer stores one document. Pre-7 engines need the document type in the path.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, v engine.Version, index, id string, doc map[string]any) error
}
