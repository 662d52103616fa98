package search

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/engine"
	"github.com/theduckylittle/registry/internal/domain/search/request"
)

// Aggregation names and the histogram timestamp format.
const (
	AggTime   = "articles_over_time"
	AggUsers  = "users"
	aggFormat = "yyyy-MM-dd'T'HH:mm:ssZ"
)

// CompiledQuery is the version-independent result of compiling a request.
// Encode renders it in the engine's dialect.
type CompiledQuery struct {
	Must         []any
	Filter       *GeoShapeFilter
	Sort         map[string]SortOrder
	From         int
	Size         int
	Aggregations map[string]any

	dialect engine.Dialect
}

// Dialect returns the dialect the query was compiled for.
func (q *CompiledQuery) Dialect() engine.Dialect { return q.dialect }

// Clause shapes. Struct fields keep the JSON key order stable.
type (
	queryStringClause struct {
		QueryString queryString `json:"query_string"`
	}
	queryString struct {
		Query string `json:"query"`
	}
	// legacy engines only accept query clauses inside a filter when wrapped in "query".
	wrappedQuery struct {
		Query any `json:"query"`
	}
	termClause struct {
		Term map[string]string `json:"term"`
	}
	rangeClause struct {
		Range map[string]dateRange `json:"range"`
	}
	dateRange struct {
		Gte string `json:"gte,omitempty"`
		Lte string `json:"lte,omitempty"`
	}
)

// GeoShapeFilter intersects the stored layer envelope with the request box.
type GeoShapeFilter struct {
	GeoShape map[string]geoShapeQuery `json:"geo_shape"`
}

type geoShapeQuery struct {
	Shape    envelope `json:"shape"`
	Relation string   `json:"relation"`
}

type envelope struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// SortOrder is the per-field sort direction.
type SortOrder struct {
	Order string `json:"order"`
}

type dateHistogram struct {
	DateHistogram dateHistogramSpec `json:"date_histogram"`
}

type dateHistogramSpec struct {
	Field    string `json:"field"`
	Format   string `json:"format"`
	Interval string `json:"interval"`
}

type termsAgg struct {
	Terms termsSpec `json:"terms"`
}

type termsSpec struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// Compile builds the query for an already validated request.
// Clause construction does not depend on the dialect except for the query_string wrapping.
func Compile(req request.Request, v engine.Version) *CompiledQuery {
	d := v.Dialect()
	q := &CompiledQuery{
		Must:    []any{},
		Size:    req.DocsLimit(),
		From:    req.From(),
		dialect: d,
	}

	if req.Text() != "" {
		q.Must = append(q.Must, textClause(d, req.Text()))
	}
	if req.UUID() != "" {
		q.Must = append(q.Must, textClause(d, req.UUID()))
	}
	if tr, ok := req.TimeRange(); ok && !tr.IsUnbounded() {
		var r dateRange
		if !tr.Start().IsOpen() {
			r.Gte = tr.Start().String()
		}
		if !tr.End().IsOpen() {
			r.Lte = tr.End().String()
		}
		q.Must = append(q.Must, rangeClause{Range: map[string]dateRange{catalog.FieldDate: r}})
	}
	if box, ok := req.GeoBox(); ok {
		q.Filter = &GeoShapeFilter{GeoShape: map[string]geoShapeQuery{
			catalog.FieldGeoShape: {
				Shape:    envelope{Type: "envelope", Coordinates: box.Envelope()},
				Relation: "intersects",
			},
		}}
	}
	if req.User() != "" {
		q.Must = append(q.Must, termClause{Term: map[string]string{catalog.FieldOriginator: req.User()}})
	}

	switch req.Sort() {
	case request.SortScore:
		q.Sort = map[string]SortOrder{"_score": {Order: "desc"}}
	case request.SortTime:
		q.Sort = map[string]SortOrder{catalog.FieldDate: {Order: "desc"}}
	case request.SortDistance:
		// rejected during validation
	}

	if gap, ok := req.TimeGap(); ok {
		q.addAggregation(AggTime, dateHistogram{DateHistogram: dateHistogramSpec{
			Field:    catalog.FieldDate,
			Format:   aggFormat,
			Interval: gap.Interval(),
		}})
	}
	if n := req.UserLimit(); n > 0 {
		q.addAggregation(AggUsers, termsAgg{Terms: termsSpec{Field: catalog.FieldOriginator, Size: n}})
	}

	return q
}

func (q *CompiledQuery) addAggregation(name string, agg any) {
	if q.Aggregations == nil {
		q.Aggregations = make(map[string]any)
	}
	q.Aggregations[name] = agg
}

func textClause(d engine.Dialect, text string) any {
	c := queryStringClause{QueryString: queryString{Query: text}}
	if d == engine.Legacy {
		return wrappedQuery{Query: c}
	}
	return c
}

type boolQuery struct {
	Must   []any           `json:"must"`
	Filter *GeoShapeFilter `json:"filter,omitempty"`
	Should *GeoShapeFilter `json:"should,omitempty"`
}

type boolClause struct {
	Bool boolQuery `json:"bool"`
}

type filteredClause struct {
	Filtered struct {
		Filter boolClause `json:"filter"`
	} `json:"filtered"`
}

type document struct {
	Query any                  `json:"query"`
	Size  int                  `json:"size"`
	From  int                  `json:"from"`
	Sort  map[string]SortOrder `json:"sort,omitempty"`
	Aggs  map[string]any       `json:"aggs,omitempty"`
}

// Document returns the request body in the compiled dialect.
// Legacy engines take the predicates as a filtered bool with the geo filter under should;
// modern engines take a flat bool with the geo filter under filter.
func (q *CompiledQuery) Document() any {
	var query any
	if q.dialect == engine.Legacy {
		var f filteredClause
		f.Filtered.Filter = boolClause{Bool: boolQuery{Must: q.Must, Should: q.Filter}}
		query = f
	} else {
		query = boolClause{Bool: boolQuery{Must: q.Must, Filter: q.Filter}}
	}
	return document{
		Query: query,
		Size:  q.Size,
		From:  q.From,
		Sort:  q.Sort,
		Aggs:  q.Aggregations,
	}
}

// Encode renders the request body. Equal queries encode to identical bytes.
func (q *CompiledQuery) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(q.Document()); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
