package chi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theduckylittle/registry/internal/domain"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
)

// ListCatalogs handles GET /catalog.
func (s *Server) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalogs.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(items) == 0 {
		writeText(w, http.StatusNotFound, "Empty list of catalogs")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CatalogExists handles HEAD /catalog/{catalog}.
func (s *Server) CatalogExists(w http.ResponseWriter, r *http.Request) {
	ok, err := s.catalogs.Exists(r.Context(), chi.URLParam(r, "catalog"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateCatalog handles PUT /catalog/{catalog} and its /csw alias.
func (s *Server) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalogs.Create(r.Context(), chi.URLParam(r, "catalog"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Catalog %s created succesfully", cat.Slug()))
}

// DeleteCatalog handles DELETE /catalog/{catalog} and its /csw alias.
func (s *Server) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "catalog")
	err := s.catalogs.Delete(r.Context(), slug)
	if errors.Is(err, domain.ErrCatalogNotFound) {
		writeText(w, http.StatusNotFound, "Catalog does not exist!")
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Catalog %s removed succesfully", slug))
}

type insertResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InsertLayer handles POST /catalog/{catalog}/layers.
// 201 when indexed, 202 when the catalog is missing and the layer was skipped.
func (s *Server) InsertLayer(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, outcome, err := s.catalogs.Insert(r.Context(), chi.URLParam(r, "catalog"), raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if outcome == catalogusecase.Skipped {
		status = http.StatusAccepted
	}
	writeJSON(w, status, insertResponse{ID: doc.ID(), Status: string(outcome)})
}
