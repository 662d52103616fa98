package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/timerange"
)

// Response is the public search result.
type Response struct {
	RequestURL  string           `json:"request_url"`
	RequestBody string           `json:"request_body"`
	MatchDocs   int64            `json:"a.matchDocs"`
	Time        *TimeFacet       `json:"a.time,omitempty"`
	User        *CountFacet      `json:"a.user,omitempty"`
	Docs        []map[string]any `json:"d.docs"`
}

// TimeFacet is the date histogram facet.
type TimeFacet struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Gap    string  `json:"gap"`
	Counts []Count `json:"counts"`
}

// CountFacet is a list of value counts.
type CountFacet struct {
	Counts []Count `json:"counts"`
}

// Count is one non-empty bucket.
type Count struct {
	Count int64 `json:"count"`
	Value any   `json:"value"`
}

type rawResponse struct {
	Error json.RawMessage `json:"error"`
	Hits  struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		ArticlesOverTime *struct {
			Buckets []struct {
				KeyAsString string `json:"key_as_string"`
				DocCount    int64  `json:"doc_count"`
			} `json:"buckets"`
		} `json:"articles_over_time"`
		Users *struct {
			Buckets []struct {
				Key      any   `json:"key"`
				DocCount int64 `json:"doc_count"`
			} `json:"buckets"`
		} `json:"users"`
	} `json:"aggregations"`
}

// reshapeInput carries what the reshaper needs besides the engine body.
type reshapeInput struct {
	requestURL  string
	requestBody string
	gap         string
	docsLimit   int
}

// reshape converts an engine search response into the public Response.
// An engine "error" member becomes an EngineError carrying {"error": ...} verbatim.
func reshape(status int, body []byte, in reshapeInput) (*Response, error) {
	var raw rawResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode engine response: %v", domain.ErrEngineRejected, err)
	}

	if len(raw.Error) > 0 && string(raw.Error) != "null" {
		wrapped, _ := json.Marshal(map[string]json.RawMessage{"error": raw.Error})
		return nil, domain.NewEngineError(status, wrapped)
	}
	if status >= 300 {
		return nil, domain.NewEngineError(status, body)
	}

	total, err := parseTotal(raw.Hits.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineRejected, err)
	}

	resp := &Response{
		RequestURL:  in.requestURL,
		RequestBody: in.requestBody,
		MatchDocs:   total,
		Docs:        []map[string]any{},
	}

	if agg := raw.Aggregations.ArticlesOverTime; agg != nil {
		facet := &TimeFacet{Start: timerange.Open, End: timerange.Open, Gap: in.gap, Counts: []Count{}}
		if n := len(agg.Buckets); n > 0 {
			facet.Start = zulu(agg.Buckets[0].KeyAsString)
			facet.End = zulu(agg.Buckets[n-1].KeyAsString)
		}
		for _, b := range agg.Buckets {
			if b.DocCount == 0 {
				continue
			}
			facet.Counts = append(facet.Counts, Count{Count: b.DocCount, Value: zulu(b.KeyAsString)})
		}
		resp.Time = facet
	}

	if agg := raw.Aggregations.Users; agg != nil {
		facet := &CountFacet{Counts: []Count{}}
		for _, b := range agg.Buckets {
			if b.DocCount == 0 {
				continue
			}
			facet.Counts = append(facet.Counts, Count{Count: b.DocCount, Value: b.Key})
		}
		resp.User = facet
	}

	if in.docsLimit != 0 {
		for _, h := range raw.Hits.Hits {
			src := h.Source
			if src == nil {
				src = map[string]any{}
			}
			if abstract, ok := src[catalog.FieldAbstract].(string); ok {
				src[catalog.FieldAbstract] = catalog.StripNonASCII(abstract)
			}
			resp.Docs = append(resp.Docs, src)
		}
	}

	return resp, nil
}

// parseTotal reads hits.total as a number (before 7.x) or {"value": n}.
func parseTotal(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("decode hits.total %s: %w", raw, err)
	}
	return obj.Value, nil
}

// zulu rewrites a trailing +0000 offset to Z.
func zulu(ts string) string {
	if s, ok := strings.CutSuffix(ts, "+0000"); ok {
		return s + "Z"
	}
	return ts
}
