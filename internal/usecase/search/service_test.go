package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/theduckylittle/registry/internal/db"
	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/engine"
)

// --- Mocks ---

type mockEngine struct {
	resp      *db.SearchResponse
	err       error
	called    bool
	lastIndex string
	lastBody  string
}

func (m *mockEngine) Search(_ context.Context, index string, body []byte) (*db.SearchResponse, error) {
	m.called = true
	m.lastIndex = index
	m.lastBody = string(body)
	return m.resp, m.err
}

type mockVersions struct {
	v   engine.Version
	err error
}

func (m *mockVersions) Version(_ context.Context) (engine.Version, error) { return m.v, m.err }

func okResponse(body string) *db.SearchResponse {
	return &db.SearchResponse{URL: "http://es:9200/hypermap/_search", Status: 200, Body: []byte(body)}
}

// --- Tests ---

func TestSearch_EndToEnd(t *testing.T) {
	eng := &mockEngine{resp: okResponse(`{"hits":{"total":{"value":1},"hits":[{"_source":{"title":"Parks"}}]}}`)}
	svc := New(eng, &mockVersions{v: modern})

	req := mustRequest(t, map[string]string{"q_text": "parks", "d_docs_limit": "10", "d_docs_page": "1"})
	res, err := svc.Search(context.Background(), "hypermap", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.lastIndex != "hypermap" {
		t.Errorf("index = %q", eng.lastIndex)
	}
	resp := res.Response
	if resp == nil {
		t.Fatal("Response is nil")
	}
	if resp.RequestURL != "http://es:9200/hypermap/_search" {
		t.Errorf("RequestURL = %q", resp.RequestURL)
	}
	if resp.RequestBody != eng.lastBody {
		t.Errorf("RequestBody = %q, sent %q", resp.RequestBody, eng.lastBody)
	}
	if !strings.Contains(resp.RequestBody, `"size":10,"from":0`) {
		t.Errorf("RequestBody = %s", resp.RequestBody)
	}
	if resp.MatchDocs != 1 || len(resp.Docs) != 1 {
		t.Errorf("MatchDocs/Docs = %d/%d", resp.MatchDocs, len(resp.Docs))
	}
}

func TestSearch_LegacyDialect(t *testing.T) {
	eng := &mockEngine{resp: okResponse(`{"hits":{"total":0,"hits":[]}}`)}
	svc := New(eng, &mockVersions{v: legacy})

	if _, err := svc.Search(context.Background(), "", mustRequest(t, map[string]string{"q_text": "x"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(eng.lastBody, `{"query":{"filtered":`) {
		t.Errorf("body = %s", eng.lastBody)
	}
}

func TestSearch_OriginalResponse(t *testing.T) {
	raw := `{"took":3,"hits":{"total":0,"hits":[]}}`
	svc := New(&mockEngine{resp: okResponse(raw)}, &mockVersions{v: modern})

	res, err := svc.Search(context.Background(), "hypermap", mustRequest(t, map[string]string{"original_response": "1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Response != nil || string(res.Original) != raw {
		t.Errorf("Result = %+v", res)
	}
}

func TestSearch_OriginalResponsePassesEngineErrors(t *testing.T) {
	raw := `{"error":{"type":"x"},"status":400}`
	eng := &mockEngine{resp: &db.SearchResponse{Status: 400, Body: []byte(raw)}}
	svc := New(eng, &mockVersions{v: modern})

	res, err := svc.Search(context.Background(), "hypermap", mustRequest(t, map[string]string{"original_response": "1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Original) != raw {
		t.Errorf("Original = %s", res.Original)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		eng      *mockEngine
		versions *mockVersions
		want     error
	}{
		{
			"version unreachable",
			&mockEngine{},
			&mockVersions{err: domain.ErrEngineUnreachable},
			domain.ErrEngineUnreachable,
		},
		{
			"search unreachable",
			&mockEngine{err: &db.Error{Op: db.OpSearch, Err: domain.ErrEngineUnreachable}},
			&mockVersions{v: modern},
			domain.ErrEngineUnreachable,
		},
		{
			"missing catalog",
			&mockEngine{resp: &db.SearchResponse{Status: 404, Body: []byte(`{"error":"IndexMissingException"}`)}},
			&mockVersions{v: modern},
			domain.ErrCatalogNotFound,
		},
		{
			"engine rejects",
			&mockEngine{resp: &db.SearchResponse{Status: 400, Body: []byte(`{"error":{"type":"parse"}}`)}},
			&mockVersions{v: modern},
			domain.ErrEngineRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.eng, tt.versions)
			_, err := svc.Search(context.Background(), "hypermap", mustRequest(t, nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearch_VersionErrorSkipsEngine(t *testing.T) {
	eng := &mockEngine{}
	svc := New(eng, &mockVersions{err: domain.ErrEngineUnreachable})

	_, _ = svc.Search(context.Background(), "hypermap", mustRequest(t, nil))
	if eng.called {
		t.Error("engine called without a version")
	}
}
