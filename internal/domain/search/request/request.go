// Package request decodes and validates the search parameter set.
package request

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/duration"
	"github.com/theduckylittle/registry/internal/domain/geobox"
	"github.com/theduckylittle/registry/internal/domain/timerange"
)

// Parameter defaults.
const (
	DefaultDocsLimit = 100
	DefaultDocsPage  = 1
)

// Sort orders documents before paging.
type Sort string

// Sort modes.
const (
	SortScore    Sort = "score"
	SortTime     Sort = "time"
	SortDistance Sort = "distance"
)

// raw mirrors the wire parameters one to one; mapstructure fills it from the normalized map.
type raw struct {
	Text             string `mapstructure:"q_text"`
	Time             string `mapstructure:"q_time"`
	Geo              string `mapstructure:"q_geo"`
	User             string `mapstructure:"q_user"`
	UUID             string `mapstructure:"q_uuid"`
	DocsLimit        int    `mapstructure:"d_docs_limit"`
	DocsPage         int    `mapstructure:"d_docs_page"`
	DocsSort         string `mapstructure:"d_docs_sort"`
	TimeLimit        int    `mapstructure:"a_time_limit"`
	TimeGap          string `mapstructure:"a_time_gap"`
	HeatmapLimit     int    `mapstructure:"a_hm_limit"`
	HeatmapGridLevel int    `mapstructure:"a_hm_gridlevel"`
	HeatmapFilter    string `mapstructure:"a_hm_filter"`
	TextLimit        int    `mapstructure:"a_text_limit"`
	UserLimit        int    `mapstructure:"a_user_limit"`
	OriginalResponse bool   `mapstructure:"original_response"`
}

// Request is a validated, immutable search request.
type Request struct {
	text             string
	uuid             string
	user             string
	timeRange        *timerange.Range
	geoBox           *geobox.Box
	docsLimit        int
	docsPage         int
	sort             Sort
	timeLimit        int
	timeGap          *duration.Spec
	timeGapToken     string
	userLimit        int
	originalResponse bool
}

// Decode builds a Request from a normalized, single-valued parameter map.
// Unknown keys are ignored. Empty values count as absent so defaults apply.
func Decode(values map[string]string) (Request, error) {
	input := make(map[string]any, len(values))
	for k, v := range values {
		if v != "" {
			input[k] = v
		}
	}

	r := raw{
		DocsLimit: DefaultDocsLimit,
		DocsPage:  DefaultDocsPage,
		DocsSort:  string(SortScore),
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &r,
	})
	if err != nil {
		return Request{}, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return Request{}, fmt.Errorf("%w: %s", domain.ErrInvalidParameter, decodeMessage(err))
	}

	return r.validate()
}

func decodeMessage(err error) string {
	var merr *mapstructure.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return merr.Errors[0]
	}
	return err.Error()
}

func (r raw) validate() (Request, error) {
	if r.DocsPage <= 0 {
		return Request{}, fmt.Errorf("%w: d_docs_page cant be zero or negative", domain.ErrPagination)
	}
	if r.DocsLimit < 0 {
		return Request{}, fmt.Errorf("%w: d_docs_limit cant be negative", domain.ErrInvalidParameter)
	}
	for _, p := range []struct {
		name  string
		value int
	}{
		{"a_time_limit", r.TimeLimit},
		{"a_user_limit", r.UserLimit},
		{"a_text_limit", r.TextLimit},
		{"a_hm_limit", r.HeatmapLimit},
	} {
		if p.value < 0 {
			return Request{}, fmt.Errorf("%w: %s cant be negative", domain.ErrInvalidParameter, p.name)
		}
	}

	sort := Sort(r.DocsSort)
	switch sort {
	case SortScore, SortTime:
	case SortDistance:
		return Request{}, fmt.Errorf("%w: d_docs_sort=distance needs a reference point", domain.ErrUnsupportedSort)
	default:
		return Request{}, fmt.Errorf("%w: d_docs_sort must be one of score, time, distance", domain.ErrInvalidParameter)
	}

	req := Request{
		text:             r.Text,
		uuid:             r.UUID,
		user:             r.User,
		docsLimit:        r.DocsLimit,
		docsPage:         r.DocsPage,
		sort:             sort,
		timeLimit:        r.TimeLimit,
		timeGapToken:     r.TimeGap,
		userLimit:        r.UserLimit,
		originalResponse: r.OriginalResponse,
	}

	if r.Time != "" {
		tr, err := timerange.Parse(r.Time)
		if err != nil {
			return Request{}, fmt.Errorf("q_time: %w", err)
		}
		req.timeRange = &tr
	}
	if r.Geo != "" {
		box, err := geobox.Parse(r.Geo)
		if err != nil {
			return Request{}, fmt.Errorf("q_geo: %w", err)
		}
		req.geoBox = &box
	}
	if r.TimeGap != "" {
		gap, err := duration.Parse(r.TimeGap)
		if err != nil {
			return Request{}, fmt.Errorf("a_time_gap: %w", err)
		}
		req.timeGap = &gap
	}

	if r.TimeLimit > 0 {
		if req.timeRange == nil {
			return Request{}, domain.NewMissingCompanion("a_time_limit", "q_time")
		}
		if req.timeGap == nil {
			return Request{}, domain.NewMissingCompanion("a_time_limit", "a_time_gap")
		}
	}

	return req, nil
}

// Text returns the free-text query.
func (r Request) Text() string { return r.text }

// UUID returns the layer identifier query.
func (r Request) UUID() string { return r.uuid }

// User returns the exact originator filter.
func (r Request) User() string { return r.user }

// TimeRange returns the parsed q_time range, if any.
func (r Request) TimeRange() (timerange.Range, bool) {
	if r.timeRange == nil {
		return timerange.Range{}, false
	}
	return *r.timeRange, true
}

// GeoBox returns the parsed q_geo box, if any.
func (r Request) GeoBox() (geobox.Box, bool) {
	if r.geoBox == nil {
		return geobox.Box{}, false
	}
	return *r.geoBox, true
}

// DocsLimit returns the page size.
func (r Request) DocsLimit() int { return r.docsLimit }

// DocsPage returns the 1-based page number.
func (r Request) DocsPage() int { return r.docsPage }

// From returns the offset of the first document on the page.
func (r Request) From() int { return r.docsLimit * (r.docsPage - 1) }

// Sort returns the document order.
func (r Request) Sort() Sort { return r.sort }

// TimeLimit returns a_time_limit.
func (r Request) TimeLimit() int { return r.timeLimit }

// TimeGap returns the parsed facet gap, if any.
func (r Request) TimeGap() (duration.Spec, bool) {
	if r.timeGap == nil {
		return duration.Spec{}, false
	}
	return *r.timeGap, true
}

// TimeGapToken returns the gap exactly as the client sent it.
func (r Request) TimeGapToken() string { return r.timeGapToken }

// UserLimit returns the size of the users facet; zero disables it.
func (r Request) UserLimit() int { return r.userLimit }

// OriginalResponse reports whether the raw engine response was requested.
func (r Request) OriginalResponse() bool { return r.originalResponse }
