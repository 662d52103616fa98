package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
)

// CatalogInfo is one entry of the catalog listing.
type CatalogInfo struct {
	ID        int
	Slug      string
	SearchURL string
}

// InsertResult reports what happened to an indexed layer.
type InsertResult struct {
	ID string
	// Skipped is set when the catalog did not exist and nothing was stored.
	Skipped bool
}

// CatalogService manages catalog indexes and their layers.
type CatalogService struct {
	svc catalogUseCase
	obs *observer
}

// Create provisions the catalog index.
func (s *CatalogService) Create(ctx context.Context, slug string) (info CatalogInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.create", start, err) }()

	cat, err := s.svc.Create(ctx, slug)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("create catalog: %w", err)
	}
	return CatalogInfo{ID: -1, Slug: cat.Slug(), SearchURL: domcat.Summarize(-1, cat.Slug()).SearchURL}, nil
}

// Delete removes the catalog index. A missing catalog yields ErrCatalogNotFound.
func (s *CatalogService) Delete(ctx context.Context, slug string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.delete", start, err) }()

	if err = s.svc.Delete(ctx, slug); err != nil {
		return fmt.Errorf("delete catalog: %w", err)
	}
	return nil
}

// Exists reports whether the catalog index is live.
func (s *CatalogService) Exists(ctx context.Context, slug string) (ok bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.exists", start, err) }()

	ok, err = s.svc.Exists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("check catalog: %w", err)
	}
	return ok, nil
}

// List returns every catalog, numbered in listing order.
func (s *CatalogService) List(ctx context.Context) (out []CatalogInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.list", start, err) }()

	items, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	out = make([]CatalogInfo, len(items))
	for i, it := range items {
		out[i] = CatalogInfo{ID: it.ID, Slug: it.Slug, SearchURL: it.SearchURL}
	}
	return out, nil
}

// Insert indexes one layer document. layer is either raw JSON ([]byte, json.RawMessage)
// or any value that marshals to a layer document.
func (s *CatalogService) Insert(ctx context.Context, slug string, layer any) (res InsertResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.insert", start, err) }()

	raw, err := layerJSON(layer)
	if err != nil {
		return InsertResult{}, err
	}
	doc, outcome, err := s.svc.Insert(ctx, slug, raw)
	if err != nil {
		return InsertResult{}, fmt.Errorf("insert layer: %w", err)
	}
	return InsertResult{ID: doc.ID(), Skipped: outcome == catalogusecase.Skipped}, nil
}

func layerJSON(layer any) ([]byte, error) {
	switch v := layer.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	raw, err := json.Marshal(layer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return raw, nil
}
