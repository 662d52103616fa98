package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/config"
	"github.com/theduckylittle/registry/internal/db/elastic"
	domcat "github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	logpkg "github.com/theduckylittle/registry/internal/logger"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	"github.com/theduckylittle/registry/internal/usecase/engineversion"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
)

// catalogService is the slice of the catalog use case the CLI drives.
type catalogService interface {
	Create(ctx context.Context, slug string) (domcat.Catalog, error)
	Delete(ctx context.Context, slug string) error
	Exists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]domcat.Summary, error)
	Insert(ctx context.Context, slug string, raw []byte) (domcat.Document, catalogusecase.InsertOutcome, error)
}

type searchService interface {
	Compile(ctx context.Context, req request.Request) (*searchuc.CompiledQuery, error)
	Search(ctx context.Context, catalog string, req request.Request) (searchuc.Result, error)
}

type services struct {
	catalogs catalogService
	search   searchService
	logger   *zap.Logger
}

// factory builds the services once the global flags are parsed.
type factory func(ctx context.Context, cmd *cli.Command) (*services, error)

// buildServices wires the real engine client from the config selected by --env/--config.
func buildServices(ctx context.Context, cmd *cli.Command) (*services, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var (
		cfg config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(cmd.String("env"))
	}
	if err != nil {
		return nil, err
	}
	if u := cmd.String("search-url"); u != "" {
		cfg.Search.URL = u
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logpkg.NewLogger("cli", cmd.String("log-level"))
	if err != nil {
		return nil, err
	}

	engine, err := elastic.New(elastic.Config{
		URL:      cfg.Search.URL,
		Username: cfg.Search.Username,
		Password: cfg.Search.Password,
		Timeout:  time.Duration(cfg.Search.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("search engine client: %w", err)
	}

	// One process, one engine: probe once and keep it.
	versions := engineversion.New(engine, time.Hour, logger)

	return &services{
		catalogs: catalogusecase.New(engine, versions, cfg.Search.MappingPrecision),
		search:   searchuc.New(engine, versions),
		logger:   logger,
	}, nil
}
