// Package catalog manages catalog indexes and the layer documents stored in them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/domain"
	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/logger"
	"github.com/theduckylittle/registry/internal/metrics"
)

// InsertOutcome reports what happened to a submitted document.
type InsertOutcome string

const (
	// Indexed means the engine stored the document.
	Indexed InsertOutcome = "indexed"
	// Skipped means the catalog index does not exist; nothing was stored.
	Skipped InsertOutcome = "skipped"
)

// Service handles the catalog index lifecycle.
type Service struct {
	engine    Engine
	versions  VersionSource
	precision string
}

// New creates a catalog service. precision is the geo_shape mapping precision.
func New(engine Engine, versions VersionSource, precision string) *Service {
	return &Service{engine: engine, versions: versions, precision: precision}
}

// Create provisions the catalog index with a mapping for the running engine version.
func (s *Service) Create(ctx context.Context, slug string) (domcat.Catalog, error) {
	cat, err := domcat.New(slug, s.precision)
	if err != nil {
		return domcat.Catalog{}, err
	}

	v, err := s.versions.Version(ctx)
	if err != nil {
		return domcat.Catalog{}, fmt.Errorf("engine version: %w", err)
	}

	if err := s.engine.CreateIndex(ctx, cat.IndexName(), cat.Mapping(v)); err != nil {
		return domcat.Catalog{}, fmt.Errorf("create catalog %s: %w", slug, err)
	}

	logger.FromContext(ctx).Info("catalog created",
		zap.String("catalog", slug),
		zap.String("engine_version", v.String()),
	)
	return cat, nil
}

// Delete removes the catalog index. A missing catalog yields domain.ErrCatalogNotFound.
func (s *Service) Delete(ctx context.Context, slug string) error {
	cat, err := domcat.New(slug, s.precision)
	if err != nil {
		return err
	}
	if err := s.engine.DeleteIndex(ctx, cat.IndexName()); err != nil {
		return fmt.Errorf("delete catalog %s: %w", slug, err)
	}

	logger.FromContext(ctx).Info("catalog deleted", zap.String("catalog", slug))
	return nil
}

// Exists reports whether the slug is among the engine's live indexes. Always asks the engine.
func (s *Service) Exists(ctx context.Context, slug string) (bool, error) {
	names, err := s.engine.Aliases(ctx)
	if err != nil {
		return false, fmt.Errorf("list indexes: %w", err)
	}
	return slices.Contains(names, slug), nil
}

// List returns the listing entries for every index, numbered from zero.
func (s *Service) List(ctx context.Context) ([]domcat.Summary, error) {
	names, err := s.engine.Aliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	out := make([]domcat.Summary, 0, len(names))
	for i, name := range names {
		out = append(out, domcat.Summarize(i, name))
	}
	return out, nil
}

// Insert validates raw and indexes it into the catalog.
// When the catalog index does not exist the document is logged and skipped, not failed.
func (s *Service) Insert(ctx context.Context, slug string, raw []byte) (domcat.Document, InsertOutcome, error) {
	log := logger.FromContext(ctx)

	cat, err := domcat.New(slug, s.precision)
	if err != nil {
		return domcat.Document{}, "", err
	}
	doc, err := domcat.ParseDocument(raw)
	if err != nil {
		return domcat.Document{}, "", err
	}

	exists, err := s.Exists(ctx, slug)
	if err != nil {
		metrics.IndexedDocumentsTotal.WithLabelValues("failed").Inc()
		return domcat.Document{}, "", err
	}
	if !exists {
		metrics.IndexedDocumentsTotal.WithLabelValues(string(Skipped)).Inc()
		log.Warn("cannot add layer, catalog does not exist",
			zap.String("layer", doc.ID()),
			zap.String("catalog", slug),
		)
		return doc, Skipped, nil
	}

	v, err := s.versions.Version(ctx)
	if err != nil {
		metrics.IndexedDocumentsTotal.WithLabelValues("failed").Inc()
		return domcat.Document{}, "", fmt.Errorf("engine version: %w", err)
	}
	err = s.engine.IndexDocument(ctx, v, cat.IndexName(), doc.ID(), doc.Fields())
	if errors.Is(err, domain.ErrCatalogNotFound) {
		// deleted between the existence check and the write
		metrics.IndexedDocumentsTotal.WithLabelValues(string(Skipped)).Inc()
		log.Warn("cannot add layer, catalog was removed", zap.String("layer", doc.ID()), zap.String("catalog", slug))
		return doc, Skipped, nil
	}
	if err != nil {
		metrics.IndexedDocumentsTotal.WithLabelValues("failed").Inc()
		return domcat.Document{}, "", fmt.Errorf("index layer %s: %w", doc.ID(), err)
	}

	metrics.IndexedDocumentsTotal.WithLabelValues(string(Indexed)).Inc()
	log.Info("layer indexed", zap.String("layer", doc.ID()), zap.String("title", doc.Title()))
	return doc, Indexed, nil
}
