package chi

import (
	"context"

	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	healthuc "github.com/theduckylittle/registry/internal/usecase/health"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
)

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, catalog string, req request.Request) (searchuc.Result, error)
}

// Catalogs manages catalog indexes and their layers.
type Catalogs interface {
	Create(ctx context.Context, slug string) (domcat.Catalog, error)
	Delete(ctx context.Context, slug string) error
	Exists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]domcat.Summary, error)
	Insert(ctx context.Context, slug string, raw []byte) (domcat.Document, catalogusecase.InsertOutcome, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
