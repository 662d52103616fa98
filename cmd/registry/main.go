package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/config"
	"github.com/theduckylittle/registry/internal/db/elastic"
	logpkg "github.com/theduckylittle/registry/internal/logger"
	"github.com/theduckylittle/registry/internal/metrics"
	chiTransport "github.com/theduckylittle/registry/internal/transport/chi"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	"github.com/theduckylittle/registry/internal/usecase/engineversion"
	healthuc "github.com/theduckylittle/registry/internal/usecase/health"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
	"github.com/theduckylittle/registry/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting registry API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mapping_precision", cfg.Search.MappingPrecision),
		zap.Bool("auth", len(cfg.Auth.APIKeys) > 0),
	)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEngineMetrics()

	engine, err := elastic.New(elastic.Config{
		URL:      cfg.Search.URL,
		Username: cfg.Search.Username,
		Password: cfg.Search.Password,
		Timeout:  time.Duration(cfg.Search.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}

	versions := engineversion.New(engine, versionTTL(cfg.Search.VersionTTLSec), logger)

	// The engine may come up after us; searches probe again on demand.
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), time.Duration(cfg.Search.TimeoutSec)*time.Second)
	if v, err := versions.Version(probeCtx); err != nil {
		logger.Warn("Search engine not reachable at startup", zap.Error(err))
	} else {
		logger.Info("Connected to search engine", zap.String("engine_version", v.String()))
	}
	cancelProbe()

	searchSvc := searchuc.New(engine, versions)
	catalogSvc := catalogusecase.New(engine, versions, cfg.Search.MappingPrecision)
	healthSvc := healthuc.New(engine, engine)

	server := chiTransport.NewServer(searchSvc, catalogSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.Options{
		APIKeys:      cfg.Auth.APIKeys,
		PublicSearch: cfg.Auth.PublicSearch,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown; SIGHUP forgets the cached engine version after an upgrade.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	for sig := range quit {
		if sig == syscall.SIGHUP {
			versions.Invalidate()
			logger.Info("Engine version cache invalidated")
			continue
		}
		break
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// versionTTL turns the configured seconds into a cache TTL. Negative disables caching.
func versionTTL(sec int) time.Duration {
	if sec < 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}
