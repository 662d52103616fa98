// Package search compiles search requests into engine queries and reshapes the answers.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/search/request"
)

// Result is either the reshaped response or, when requested, the engine's own.
type Result struct {
	Response *Response
	Original json.RawMessage
}

// Service runs searches against one catalog or all of them.
type Service struct {
	engine   Engine
	versions VersionSource
}

// New creates a search service.
func New(engine Engine, versions VersionSource) *Service {
	return &Service{engine: engine, versions: versions}
}

// Compile resolves the engine dialect and compiles req without running it.
func (s *Service) Compile(ctx context.Context, req request.Request) (*CompiledQuery, error) {
	v, err := s.versions.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine version: %w", err)
	}
	return Compile(req, v), nil
}

// Search compiles req, runs it against catalog (every index when empty) and reshapes the answer.
func (s *Service) Search(ctx context.Context, catalog string, req request.Request) (Result, error) {
	q, err := s.Compile(ctx, req)
	if err != nil {
		return Result{}, err
	}
	body, err := q.Encode()
	if err != nil {
		return Result{}, err
	}

	res, err := s.engine.Search(ctx, catalog, body)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	if req.OriginalResponse() {
		if !json.Valid(res.Body) {
			return Result{}, fmt.Errorf("%w: engine returned invalid JSON", domain.ErrEngineRejected)
		}
		return Result{Original: res.Body}, nil
	}

	if res.Status == http.StatusNotFound && catalog != "" {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, catalog)
	}

	resp, err := reshape(res.Status, res.Body, reshapeInput{
		requestURL:  res.URL,
		requestBody: string(body),
		gap:         req.TimeGapToken(),
		docsLimit:   req.DocsLimit(),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Response: resp}, nil
}
