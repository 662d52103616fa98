// Package catalog models a per-catalog search index and the documents stored in it.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/engine"
)

// DocType is the mapping type name used by engines before 7.x.
const DocType = "layer"

// DefaultPrecision is the geo_shape precision used when none is configured.
const DefaultPrecision = "500m"

// Field names shared by the mapping, the compiler and the reshaper.
const (
	FieldGeoShape   = "layer_geoshape"
	FieldDate       = "layer_date"
	FieldOriginator = "layer_originator"
	FieldIdentifier = "layer_identifier"
	FieldTitle      = "title"
	FieldAbstract   = "abstract"
	FieldAllText    = "alltext"
)

var slugPattern = regexp.MustCompile(`^\w+$`)

// Catalog is a named index in the search engine.
type Catalog struct {
	slug      string
	indexName string
	precision string
}

// New validates the slug and creates a Catalog. The index is named after the slug.
func New(slug, precision string) (Catalog, error) {
	if !slugPattern.MatchString(slug) {
		return Catalog{}, fmt.Errorf("%w: catalog slug %q must match [A-Za-z0-9_]+", domain.ErrInvalidParameter, slug)
	}
	if precision == "" {
		precision = DefaultPrecision
	}
	return Catalog{slug: slug, indexName: slug, precision: precision}, nil
}

// Slug returns the URL-safe catalog name.
func (c Catalog) Slug() string { return c.slug }

// IndexName returns the engine index name.
func (c Catalog) IndexName() string { return c.indexName }

// MappingPrecision returns the geo_shape precision.
func (c Catalog) MappingPrecision() string { return c.precision }

// Mapping builds the index creation body for the given engine version.
func (c Catalog) Mapping(v engine.Version) map[string]any {
	properties := map[string]any{
		FieldGeoShape: map[string]any{
			"type":      "geo_shape",
			"tree":      "quadtree",
			"precision": c.precision,
		},
		FieldTitle:    textField(v, FieldAllText),
		FieldAbstract: textField(v, FieldAllText),
		FieldAllText:  textField(v, ""),
	}

	body := map[string]any{"properties": properties}
	if !v.Typeless() {
		body = map[string]any{DocType: body}
	}
	return map[string]any{"mappings": body}
}

func textField(v engine.Version, copyTo string) map[string]any {
	f := map[string]any{"type": "string", "index": "analyzed"}
	if v.HasTextType() {
		f = map[string]any{"type": "text"}
	}
	if copyTo != "" {
		f["copy_to"] = copyTo
	}
	return f
}

// Summary is the public listing entry for a catalog.
type Summary struct {
	ID        int     `json:"id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	URL       *string `json:"url"`
	SearchURL string  `json:"search_url"`
}

// Summarize builds the listing entry for the catalog at position id.
func Summarize(id int, slug string) Summary {
	return Summary{
		ID:        id,
		Slug:      slug,
		Name:      slug,
		SearchURL: "/catalog/" + slug + "/api/",
	}
}
