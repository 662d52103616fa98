package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/engine"
)

func TestNew(t *testing.T) {
	c, err := New("hypermap", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Slug() != "hypermap" || c.IndexName() != "hypermap" {
		t.Errorf("slug/index = %q/%q", c.Slug(), c.IndexName())
	}
	if c.MappingPrecision() != DefaultPrecision {
		t.Errorf("MappingPrecision() = %q", c.MappingPrecision())
	}
}

func TestNew_InvalidSlug(t *testing.T) {
	for _, slug := range []string{"", "has space", "a/b", "dash-ed", "dot.ted"} {
		if _, err := New(slug, ""); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("New(%q) error = %v, want ErrInvalidParameter", slug, err)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestMapping(t *testing.T) {
	c, err := New("hypermap", "1km")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		version string
		want    string
	}{
		{
			"1.7.5",
			`{"mappings":{"layer":{"properties":{` +
				`"abstract":{"copy_to":"alltext","index":"analyzed","type":"string"},` +
				`"alltext":{"index":"analyzed","type":"string"},` +
				`"layer_geoshape":{"precision":"1km","tree":"quadtree","type":"geo_shape"},` +
				`"title":{"copy_to":"alltext","index":"analyzed","type":"string"}}}}}`,
		},
		{
			"5.6.0",
			`{"mappings":{"layer":{"properties":{` +
				`"abstract":{"copy_to":"alltext","type":"text"},` +
				`"alltext":{"type":"text"},` +
				`"layer_geoshape":{"precision":"1km","tree":"quadtree","type":"geo_shape"},` +
				`"title":{"copy_to":"alltext","type":"text"}}}}}`,
		},
		{
			"7.10.2",
			`{"mappings":{"properties":{` +
				`"abstract":{"copy_to":"alltext","type":"text"},` +
				`"alltext":{"type":"text"},` +
				`"layer_geoshape":{"precision":"1km","tree":"quadtree","type":"geo_shape"},` +
				`"title":{"copy_to":"alltext","type":"text"}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v, err := engine.ParseVersion(tt.version)
			if err != nil {
				t.Fatalf("ParseVersion: %v", err)
			}
			if got := mustJSON(t, c.Mapping(v)); got != tt.want {
				t.Errorf("Mapping()\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	got := mustJSON(t, Summarize(2, "hypermap"))
	want := `{"id":2,"slug":"hypermap","name":"hypermap","url":null,"search_url":"/catalog/hypermap/api/"}`
	if got != want {
		t.Errorf("Summarize() = %s, want %s", got, want)
	}
}
