// Package chi exposes the registry over HTTP with a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/logger"
	"github.com/theduckylittle/registry/internal/metrics"
	healthuc "github.com/theduckylittle/registry/internal/usecase/health"
)

// maxDocumentBytes caps layer document uploads.
const maxDocumentBytes = 1 << 20

// catalogParam matches the slugs the engine accepts as index names.
const catalogParam = "{catalog:[A-Za-z0-9_]+}"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves search, catalog administration, health and metrics.
type Server struct {
	search        Searcher
	catalogs      Catalogs
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalogs Catalogs, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:   search,
		catalogs: catalogs,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		engineErrorHandler,
		sentinelHandler(domain.ErrCatalogNotFound, http.StatusNotFound, errorText),
		sentinelHandler(domain.ErrEngineUnreachable, http.StatusInternalServerError, sentinelText),
		sentinelHandler(domain.ErrMissingCompanionParameter, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrPatternMismatch, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrNumberFormat, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrPagination, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrUnsupportedSort, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrInvalidParameter, http.StatusBadRequest, errorText),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, errorText),
	}
	return s
}

// Options configures the router built by NewRouter.
type Options struct {
	APIKeys      []string
	PublicSearch bool
}

// NewRouter wires the middleware stack and every route.
func NewRouter(s *Server, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys, opts.PublicSearch))
	r.Use(metrics.Middleware())
	s.Routes(r)
	return r
}

// Routes registers the handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/api", s.SearchAll)
	r.Get("/api/", s.SearchAll)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.ListCatalogs)

		r.Route("/"+catalogParam, func(r chi.Router) {
			r.Head("/", s.CatalogExists)
			r.Put("/", s.CreateCatalog)
			r.Delete("/", s.DeleteCatalog)
			r.Put("/csw", s.CreateCatalog)
			r.Delete("/csw", s.DeleteCatalog)
			r.Get("/api", s.SearchCatalog)
			r.Get("/api/", s.SearchCatalog)
			r.Post("/layers", s.InsertLayer)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:        string(report.Status),
		Checks:        report.Checks,
		EngineVersion: report.EngineVersion,
		Catalogs:      report.Catalogs,
	})
}

type healthResponse struct {
	Status        string                          `json:"status"`
	Checks        map[string]healthuc.CheckResult `json:"checks"`
	EngineVersion string                          `json:"engine_version,omitempty"`
	Catalogs      int                             `json:"catalogs"`
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// writeError renders the {"error": {"msg": ...}} envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: errorMessage{Msg: message}})
}

type errorResponse struct {
	Error errorMessage `json:"error"`
}

type errorMessage struct {
	Msg string `json:"msg"`
}

// errorText exposes the full error chain. Used for input errors whose text only echoes the request.
func errorText(_, err error) string { return err.Error() }

// sentinelText exposes only the sentinel so engine addresses never reach clients.
func sentinelText(sentinel, _ error) string { return sentinel.Error() }

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message func(sentinel, err error) string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message(sentinel, err))
		return true
	}
}

// engineErrorHandler passes the engine's own error document through with 400.
func engineErrorHandler(w http.ResponseWriter, err error) bool {
	var ee *domain.EngineError
	if !errors.As(err, &ee) {
		return false
	}
	if json.Valid(ee.Body) {
		writeRawJSON(w, http.StatusBadRequest, ee.Body)
		return true
	}
	writeError(w, http.StatusBadRequest, string(ee.Body))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
