package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/domain/params"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	"github.com/theduckylittle/registry/internal/logger"
)

// SearchAll handles GET /api across every catalog index.
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, "")
}

// SearchCatalog handles GET /catalog/{catalog}/api.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, chi.URLParam(r, "catalog"))
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, catalog string) {
	req, err := request.Decode(params.Flatten(params.Normalize(r.URL.Query())))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	if catalog != "" {
		ctx = logger.WithFields(ctx, zap.String("catalog", catalog))
	}

	res, err := s.search.Search(ctx, catalog, req)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}

	if res.Response == nil {
		writeRawJSON(w, http.StatusOK, res.Original)
		return
	}
	writeJSON(w, http.StatusOK, res.Response)
}
