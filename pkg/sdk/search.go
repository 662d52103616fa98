package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/theduckylittle/registry/internal/domain/geobox"
	"github.com/theduckylittle/registry/internal/domain/params"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	searchuc "github.com/theduckylittle/registry/internal/usecase/search"
)

// Response is the reshaped search result.
type Response = searchuc.Response

// SearchBuilder collects search parameters using the same names as the HTTP API.
// Methods can be chained; the first error is reported by Do, Raw or Compile.
type SearchBuilder struct {
	catalog string
	svc     searchUseCase
	obs     *observer
	params  map[string]string
	err     error
}

// Text sets the full-text query (q_text).
func (b *SearchBuilder) Text(q string) *SearchBuilder { return b.Param("q_text", q) }

// UUID restricts results to one layer identifier (q_uuid).
func (b *SearchBuilder) UUID(id string) *SearchBuilder { return b.Param("q_uuid", id) }

// User filters on the layer originator (q_user).
func (b *SearchBuilder) User(name string) *SearchBuilder { return b.Param("q_user", name) }

// Between filters on layer dates. A zero time leaves that side open.
func (b *SearchBuilder) Between(from, to time.Time) *SearchBuilder {
	return b.Param("q_time", fmt.Sprintf("[%s TO %s]", timeSide(from), timeSide(to)))
}

// TimeRange sets q_time verbatim, e.g. "[-5000 TO 2000]" for BCE years.
func (b *SearchBuilder) TimeRange(expr string) *SearchBuilder { return b.Param("q_time", expr) }

// Box keeps layers intersecting the rectangle spanned by two corners.
func (b *SearchBuilder) Box(lat1, lon1, lat2, lon2 float64) *SearchBuilder {
	box, err := geobox.FromCorners(lat1, lon1, lat2, lon2)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Param("q_geo", box.String())
}

// Limit sets the page size (d_docs_limit).
func (b *SearchBuilder) Limit(n int) *SearchBuilder { return b.Param("d_docs_limit", strconv.Itoa(n)) }

// Page selects the 1-based page (d_docs_page).
func (b *SearchBuilder) Page(n int) *SearchBuilder { return b.Param("d_docs_page", strconv.Itoa(n)) }

// SortByTime orders documents by layer date instead of relevance.
func (b *SearchBuilder) SortByTime() *SearchBuilder {
	return b.Param("d_docs_sort", string(request.SortTime))
}

// TimeFacet asks for the date histogram. gap is an ISO-8601 duration such as P1Y.
func (b *SearchBuilder) TimeFacet(limit int, gap string) *SearchBuilder {
	b.Param("a_time_limit", strconv.Itoa(limit))
	return b.Param("a_time_gap", gap)
}

// UserFacet asks for the top originators.
func (b *SearchBuilder) UserFacet(limit int) *SearchBuilder {
	return b.Param("a_user_limit", strconv.Itoa(limit))
}

// Param sets any parameter by its API name. Dotted names (d.docs.limit) are accepted.
func (b *SearchBuilder) Param(name, value string) *SearchBuilder {
	b.params[params.Key(name)] = value
	return b
}

func (b *SearchBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *SearchBuilder) request(original bool) (request.Request, error) {
	if b.err != nil {
		return request.Request{}, b.err
	}
	values := make(map[string]string, len(b.params)+1)
	for k, v := range b.params {
		values[k] = v
	}
	if original {
		values["original_response"] = "1"
	} else {
		delete(values, "original_response")
	}
	return request.Decode(values)
}

// Do runs the search and returns the reshaped response.
func (b *SearchBuilder) Do(ctx context.Context) (resp *Response, err error) {
	start := time.Now()
	defer func() { b.obs.observe("search", start, err) }()

	req, err := b.request(false)
	if err != nil {
		return nil, err
	}
	res, err := b.svc.Search(ctx, b.catalog, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if res.Response == nil {
		return nil, errors.New("search: engine response was not reshaped")
	}
	return res.Response, nil
}

// Raw runs the search and returns the engine's own response body.
func (b *SearchBuilder) Raw(ctx context.Context) (body []byte, err error) {
	start := time.Now()
	defer func() { b.obs.observe("search.raw", start, err) }()

	req, err := b.request(true)
	if err != nil {
		return nil, err
	}
	res, err := b.svc.Search(ctx, b.catalog, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res.Original, nil
}

// Compile returns the engine query the search would send, without sending it.
func (b *SearchBuilder) Compile(ctx context.Context) ([]byte, error) {
	req, err := b.request(false)
	if err != nil {
		return nil, err
	}
	q, err := b.svc.Compile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return q.Encode()
}

func timeSide(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
