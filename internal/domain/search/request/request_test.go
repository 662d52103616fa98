package request

import (
	"errors"
	"testing"

	"github.com/theduckylittle/registry/internal/domain"
)

func TestDecode_Defaults(t *testing.T) {
	r, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DocsLimit() != DefaultDocsLimit {
		t.Errorf("DocsLimit() = %d, want %d", r.DocsLimit(), DefaultDocsLimit)
	}
	if r.DocsPage() != DefaultDocsPage {
		t.Errorf("DocsPage() = %d, want %d", r.DocsPage(), DefaultDocsPage)
	}
	if r.Sort() != SortScore {
		t.Errorf("Sort() = %q, want score", r.Sort())
	}
	if r.From() != 0 {
		t.Errorf("From() = %d", r.From())
	}
	if _, ok := r.TimeRange(); ok {
		t.Error("TimeRange() present without q_time")
	}
	if _, ok := r.GeoBox(); ok {
		t.Error("GeoBox() present without q_geo")
	}
	if _, ok := r.TimeGap(); ok {
		t.Error("TimeGap() present without a_time_gap")
	}
	if r.OriginalResponse() {
		t.Error("OriginalResponse() = true")
	}
}

func TestDecode_AllParams(t *testing.T) {
	r, err := Decode(map[string]string{
		"q_text":            "parks",
		"q_uuid":            "abc-123",
		"q_user":            "alice",
		"q_time":            "[2013-03-01 TO *]",
		"q_geo":             "[10,20 TO 5,15]",
		"d_docs_limit":      "20",
		"d_docs_page":       "3",
		"d_docs_sort":       "time",
		"a_time_limit":      "100",
		"a_time_gap":        "P1D",
		"a_user_limit":      "5",
		"a_hm_limit":        "10",
		"a_hm_gridlevel":    "2",
		"original_response": "1",
		"unknown":           "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "parks" || r.UUID() != "abc-123" || r.User() != "alice" {
		t.Errorf("text/uuid/user = %q/%q/%q", r.Text(), r.UUID(), r.User())
	}
	if r.From() != 40 || r.DocsLimit() != 20 {
		t.Errorf("from/size = %d/%d, want 40/20", r.From(), r.DocsLimit())
	}
	if r.Sort() != SortTime {
		t.Errorf("Sort() = %q", r.Sort())
	}
	tr, ok := r.TimeRange()
	if !ok || tr.String() != "[2013-03-01T00:00:00Z TO *]" {
		t.Errorf("TimeRange() = %v, %v", tr, ok)
	}
	box, ok := r.GeoBox()
	if !ok || box.String() != "[5,15 TO 10,20]" {
		t.Errorf("GeoBox() = %v, %v", box, ok)
	}
	gap, ok := r.TimeGap()
	if !ok || gap.Interval() != "1d" {
		t.Errorf("TimeGap() = %v, %v", gap, ok)
	}
	if r.TimeGapToken() != "P1D" {
		t.Errorf("TimeGapToken() = %q", r.TimeGapToken())
	}
	if r.UserLimit() != 5 {
		t.Errorf("UserLimit() = %d", r.UserLimit())
	}
	if !r.OriginalResponse() {
		t.Error("OriginalResponse() = false")
	}
}

func TestDecode_EmptyValuesUseDefaults(t *testing.T) {
	r, err := Decode(map[string]string{"d_docs_limit": "", "d_docs_page": "", "q_time": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DocsLimit() != DefaultDocsLimit || r.DocsPage() != DefaultDocsPage {
		t.Errorf("limit/page = %d/%d", r.DocsLimit(), r.DocsPage())
	}
	if _, ok := r.TimeRange(); ok {
		t.Error("empty q_time should be absent")
	}
}

func TestDecode_ZeroLimitAllowed(t *testing.T) {
	r, err := Decode(map[string]string{"d_docs_limit": "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DocsLimit() != 0 {
		t.Errorf("DocsLimit() = %d", r.DocsLimit())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   error
	}{
		{"page zero", map[string]string{"d_docs_page": "0"}, domain.ErrPagination},
		{"page negative", map[string]string{"d_docs_page": "-2"}, domain.ErrPagination},
		{"limit negative", map[string]string{"d_docs_limit": "-1"}, domain.ErrInvalidParameter},
		{"limit not a number", map[string]string{"d_docs_limit": "ten"}, domain.ErrInvalidParameter},
		{"user limit negative", map[string]string{"a_user_limit": "-1"}, domain.ErrInvalidParameter},
		{"unknown sort", map[string]string{"d_docs_sort": "random"}, domain.ErrInvalidParameter},
		{"distance sort", map[string]string{"d_docs_sort": "distance"}, domain.ErrUnsupportedSort},
		{"bad time", map[string]string{"q_time": "2013-03-01 TO *"}, domain.ErrPatternMismatch},
		{"bad geo shape", map[string]string{"q_geo": "[1 TO 2,3]"}, domain.ErrPatternMismatch},
		{"bad geo number", map[string]string{"q_geo": "[a,1 TO 2,3]"}, domain.ErrNumberFormat},
		{"bad gap", map[string]string{"a_time_gap": "X1D"}, domain.ErrUnsupportedFormat},
		{"time limit without q_time", map[string]string{"a_time_limit": "10"}, domain.ErrMissingCompanionParameter},
		{
			"time limit without gap",
			map[string]string{"a_time_limit": "10", "q_time": "[* TO *]"},
			domain.ErrMissingCompanionParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_MissingCompanionNamesParameter(t *testing.T) {
	tests := []struct {
		params    map[string]string
		companion string
	}{
		{map[string]string{"a_time_limit": "1"}, "q_time"},
		{map[string]string{"a_time_limit": "1", "q_time": "[2000 TO 2001]"}, "a_time_gap"},
	}
	for _, tt := range tests {
		_, err := Decode(tt.params)
		var mc *domain.MissingCompanionError
		if !errors.As(err, &mc) {
			t.Fatalf("error = %v, want MissingCompanionError", err)
		}
		if mc.Param != "a_time_limit" || mc.Companion != tt.companion {
			t.Errorf("got %s/%s, want a_time_limit/%s", mc.Param, mc.Companion, tt.companion)
		}
	}
}

func TestDecode_GapWithoutLimit(t *testing.T) {
	r, err := Decode(map[string]string{"a_time_gap": "PT30M"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gap, ok := r.TimeGap()
	if !ok || gap.Interval() != "30m" {
		t.Errorf("TimeGap() = %v, %v", gap, ok)
	}
}
