package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/engine"
)

// --- Mocks ---

type mockEngine struct {
	aliases    []string
	aliasesErr error
	createErr  error
	deleteErr  error
	indexErr   error

	createdName    string
	createdMapping map[string]any
	deletedName    string
	indexedIndex   string
	indexedID      string
	indexedVersion engine.Version
	indexedDoc     map[string]any
	aliasCalls     int
}

func (m *mockEngine) CreateIndex(_ context.Context, name string, mapping map[string]any) error {
	m.createdName = name
	m.createdMapping = mapping
	return m.createErr
}

func (m *mockEngine) DeleteIndex(_ context.Context, name string) error {
	m.deletedName = name
	return m.deleteErr
}

func (m *mockEngine) Aliases(_ context.Context) ([]string, error) {
	m.aliasCalls++
	return m.aliases, m.aliasesErr
}

func (m *mockEngine) IndexDocument(_ context.Context, v engine.Version, index, id string, doc map[string]any) error {
	m.indexedVersion = v
	m.indexedIndex = index
	m.indexedID = id
	m.indexedDoc = doc
	return m.indexErr
}

type mockVersions struct {
	v   engine.Version
	err error
}

func (m *mockVersions) Version(_ context.Context) (engine.Version, error) { return m.v, m.err }

var v7 = engine.Version{Number: "7.10.2", Major: 7, Minor: 10, Patch: 2}

const layerDoc = `{
  "title": "Parks",
  "layer_identifier": "layer-1",
  "layer_geoshape": {"type": "envelope", "coordinates": [[0, 1], [1, 0]]}
}`

// --- Tests ---

func TestCreate(t *testing.T) {
	eng := &mockEngine{}
	svc := New(eng, &mockVersions{v: v7}, "1km")

	cat, err := svc.Create(context.Background(), "hypermap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Slug() != "hypermap" || eng.createdName != "hypermap" {
		t.Errorf("slug/created = %q/%q", cat.Slug(), eng.createdName)
	}
	mappings, ok := eng.createdMapping["mappings"].(map[string]any)
	if !ok {
		t.Fatalf("mapping = %v", eng.createdMapping)
	}
	if _, typed := mappings["layer"]; typed {
		t.Error("7.x mapping must be typeless")
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		eng      *mockEngine
		versions *mockVersions
		want     error
	}{
		{"bad slug", "a-b", &mockEngine{}, &mockVersions{v: v7}, domain.ErrInvalidParameter},
		{"engine down", "ok", &mockEngine{}, &mockVersions{err: domain.ErrEngineUnreachable}, domain.ErrEngineUnreachable},
		{
			"conflict",
			"ok",
			&mockEngine{createErr: domain.NewEngineError(400, []byte(`{"error":"exists"}`))},
			&mockVersions{v: v7},
			domain.ErrEngineRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.eng, tt.versions, "").Create(context.Background(), tt.slug)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	eng := &mockEngine{}
	if err := New(eng, &mockVersions{v: v7}, "").Delete(context.Background(), "hypermap"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.deletedName != "hypermap" {
		t.Errorf("deleted = %q", eng.deletedName)
	}
}

func TestDelete_NotFound(t *testing.T) {
	eng := &mockEngine{deleteErr: domain.ErrCatalogNotFound}
	err := New(eng, &mockVersions{v: v7}, "").Delete(context.Background(), "nope")
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Errorf("error = %v, want ErrCatalogNotFound", err)
	}
}

func TestExists_AsksEngineEveryTime(t *testing.T) {
	eng := &mockEngine{aliases: []string{"a", "hypermap"}}
	svc := New(eng, &mockVersions{v: v7}, "")

	for range 2 {
		ok, err := svc.Exists(context.Background(), "hypermap")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("Exists() = false")
		}
	}
	if eng.aliasCalls != 2 {
		t.Errorf("alias calls = %d, want 2", eng.aliasCalls)
	}

	ok, err := svc.Exists(context.Background(), "other")
	if err != nil || ok {
		t.Errorf("Exists(other) = %v, %v", ok, err)
	}
}

func TestList(t *testing.T) {
	eng := &mockEngine{aliases: []string{"alpha", "beta"}}
	got, err := New(eng, &mockVersions{v: v7}, "").List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[1].ID != 1 || got[1].Slug != "beta" || got[1].SearchURL != "/catalog/beta/api/" || got[1].URL != nil {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestList_Empty(t *testing.T) {
	got, err := New(&mockEngine{}, &mockVersions{v: v7}, "").List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty slice", got)
	}
}

func TestInsert_Indexed(t *testing.T) {
	eng := &mockEngine{aliases: []string{"hypermap"}}
	svc := New(eng, &mockVersions{v: v7}, "")

	doc, outcome, err := svc.Insert(context.Background(), "hypermap", []byte(layerDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Indexed {
		t.Errorf("outcome = %q", outcome)
	}
	if doc.ID() != "layer-1" || eng.indexedID != "layer-1" || eng.indexedIndex != "hypermap" {
		t.Errorf("id/indexed = %q/%q/%q", doc.ID(), eng.indexedID, eng.indexedIndex)
	}
	if eng.indexedVersion != v7 {
		t.Errorf("version = %+v", eng.indexedVersion)
	}
	if eng.indexedDoc["title"] != "Parks" {
		t.Errorf("doc = %v", eng.indexedDoc)
	}
}

func TestInsert_SkipsMissingCatalog(t *testing.T) {
	eng := &mockEngine{aliases: []string{"other"}}
	_, outcome, err := New(eng, &mockVersions{v: v7}, "").Insert(context.Background(), "hypermap", []byte(layerDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Skipped {
		t.Errorf("outcome = %q, want skipped", outcome)
	}
	if eng.indexedID != "" {
		t.Error("document was indexed")
	}
}

func TestInsert_SkipsWhenRemovedMidway(t *testing.T) {
	eng := &mockEngine{aliases: []string{"hypermap"}, indexErr: domain.ErrCatalogNotFound}
	_, outcome, err := New(eng, &mockVersions{v: v7}, "").Insert(context.Background(), "hypermap", []byte(layerDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Skipped {
		t.Errorf("outcome = %q, want skipped", outcome)
	}
}

func TestInsert_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		eng  *mockEngine
		want error
	}{
		{"invalid document", `{"title": 5}`, &mockEngine{aliases: []string{"hypermap"}}, domain.ErrInvalidDocument},
		{"engine down", layerDoc, &mockEngine{aliasesErr: domain.ErrEngineUnreachable}, domain.ErrEngineUnreachable},
		{
			"engine rejects",
			layerDoc,
			&mockEngine{aliases: []string{"hypermap"}, indexErr: domain.NewEngineError(400, []byte(`{}`))},
			domain.ErrEngineRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(tt.eng, &mockVersions{v: v7}, "").Insert(context.Background(), "hypermap", []byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
