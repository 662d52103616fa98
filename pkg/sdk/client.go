package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theduckylittle/registry/internal/db/elastic"
	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	"github.com/theduckylittle/registry/internal/usecase/engineversion"
	healthuc "github.com/theduckylittle/registry/internal/usecase/health"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultVersionTTL = time.Minute
)

// Internal interfaces so tests can swap the use cases.
type catalogUseCase interface {
	Create(ctx context.Context, slug string) (domcat.Catalog, error)
	Delete(ctx context.Context, slug string) error
	Exists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]domcat.Summary, error)
	Insert(ctx context.Context, slug string, raw []byte) (domcat.Document, catalogusecase.InsertOutcome, error)
}

type searchUseCase interface {
	Compile(ctx context.Context, req request.Request) (*searchuc.CompiledQuery, error)
	Search(ctx context.Context, catalog string, req request.Request) (searchuc.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the registry SDK entry point.
type Client struct {
	catalogSvc catalogUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	versions   *engineversion.Cache
	obs        *observer
}

// New creates a Client and checks that the search engine answers.
// The provided context bounds that first probe.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:    defaultTimeout,
		precision:  domcat.DefaultPrecision,
		versionTTL: defaultVersionTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.searchURL == "" {
		return nil, errors.New("registry: search url required (use WithSearchURL)")
	}

	engine, err := elastic.New(elastic.Config{
		URL:       cfg.searchURL,
		Username:  cfg.username,
		Password:  cfg.password,
		Timeout:   cfg.timeout,
		Transport: cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	versions := engineversion.New(engine, cfg.versionTTL, nil)
	if _, err := versions.Version(ctx); err != nil {
		return nil, fmt.Errorf("registry: search engine not ready: %w", err)
	}

	return &Client{
		catalogSvc: catalogusecase.New(engine, versions, cfg.precision),
		searchSvc:  searchuc.New(engine, versions),
		healthSvc:  healthuc.New(engine, engine),
		versions:   versions,
		obs:        obs,
	}, nil
}

// Catalogs returns the catalog management service.
func (c *Client) Catalogs() *CatalogService {
	return &CatalogService{svc: c.catalogSvc, obs: c.obs}
}

// Search starts a search against catalog. An empty catalog searches every index.
func (c *Client) Search(catalog string) *SearchBuilder {
	return &SearchBuilder{
		catalog: catalog,
		svc:     c.searchSvc,
		obs:     c.obs,
		params:  map[string]string{},
	}
}

// ForgetEngineVersion drops the cached engine version, e.g. after an engine upgrade.
func (c *Client) ForgetEngineVersion() {
	if c.versions != nil {
		c.versions.Invalidate()
	}
}
