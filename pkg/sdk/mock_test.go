package registry

import (
	"context"

	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	healthuc "github.com/theduckylittle/registry/internal/usecase/health"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
)

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	createFn func(ctx context.Context, slug string) (domcat.Catalog, error)
	deleteFn func(ctx context.Context, slug string) error
	existsFn func(ctx context.Context, slug string) (bool, error)
	listFn   func(ctx context.Context) ([]domcat.Summary, error)
	insertFn func(ctx context.Context, slug string, raw []byte) (domcat.Document, catalogusecase.InsertOutcome, error)
}

func (m *mockCatalogUC) Create(ctx context.Context, slug string) (domcat.Catalog, error) {
	return m.createFn(ctx, slug)
}

func (m *mockCatalogUC) Delete(ctx context.Context, slug string) error {
	return m.deleteFn(ctx, slug)
}

func (m *mockCatalogUC) Exists(ctx context.Context, slug string) (bool, error) {
	return m.existsFn(ctx, slug)
}

func (m *mockCatalogUC) List(ctx context.Context) ([]domcat.Summary, error) {
	return m.listFn(ctx)
}

func (m *mockCatalogUC) Insert(
	ctx context.Context, slug string, raw []byte,
) (domcat.Document, catalogusecase.InsertOutcome, error) {
	return m.insertFn(ctx, slug, raw)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	compileFn func(ctx context.Context, req request.Request) (*searchuc.CompiledQuery, error)
	searchFn  func(ctx context.Context, catalog string, req request.Request) (searchuc.Result, error)
}

func (m *mockSearchUC) Compile(ctx context.Context, req request.Request) (*searchuc.CompiledQuery, error) {
	return m.compileFn(ctx, req)
}

func (m *mockSearchUC) Search(ctx context.Context, catalog string, req request.Request) (searchuc.Result, error) {
	return m.searchFn(ctx, catalog, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
