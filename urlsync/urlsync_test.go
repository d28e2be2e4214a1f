package urlsync

import (
	"net/url"
	"testing"

	"github.com/meninojhony/modec-challenger/model"
)

func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestDecodeFilters(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected model.Filters
	}{
		{
			name:     "empty query",
			query:    "",
			expected: model.Filters{},
		},
		{
			name:  "all keys set",
			query: "q=server&supplier=acme&status=active&category_id=3&min_value=100&max_value=5000.5&start_date_from=2024-01-01&start_date_to=2024-06-30&end_date_from=2024-07-01&end_date_to=2024-12-31",
			expected: model.Filters{
				Q:             "server",
				Supplier:      "acme",
				Status:        "active",
				CategoryID:    int64Ptr(3),
				MinValue:      floatPtr(100),
				MaxValue:      floatPtr(5000.5),
				StartDateFrom: "2024-01-01",
				StartDateTo:   "2024-06-30",
				EndDateFrom:   "2024-07-01",
				EndDateTo:     "2024-12-31",
			},
		},
		{
			name:     "unknown keys ignored",
			query:    "status=active&page=3&theme=dark&sort_by=value",
			expected: model.Filters{Status: "active"},
		},
		{
			name:     "malformed category id dropped",
			query:    "category_id=abc&status=draft",
			expected: model.Filters{Status: "draft"},
		},
		{
			name:     "malformed min value dropped",
			query:    "min_value=cheap",
			expected: model.Filters{},
		},
		{
			name:     "negative value bound dropped",
			query:    "min_value=-5&max_value=200",
			expected: model.Filters{MaxValue: floatPtr(200)},
		},
		{
			name:     "empty values treated as absent",
			query:    "q=&supplier=&min_value=",
			expected: model.Filters{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("failed to parse query: %v", err)
			}
			got := DecodeFilters(values)
			if !got.Equal(tt.expected) {
				t.Errorf("DecodeFilters(%q) = %+v, want %+v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestEncodeFiltersOmitsAbsent(t *testing.T) {
	values := EncodeFilters(model.Filters{Status: "active", MinValue: floatPtr(100)})

	if got := values.Get(KeyStatus); got != "active" {
		t.Errorf("status = %q, want %q", got, "active")
	}
	if got := values.Get(KeyMinValue); got != "100" {
		t.Errorf("min_value = %q, want %q", got, "100")
	}
	if len(values) != 2 {
		t.Errorf("expected exactly 2 parameters, got %d: %v", len(values), values)
	}
}

func TestEncodeFiltersEmptySet(t *testing.T) {
	values := EncodeFilters(model.Filters{})
	if len(values) != 0 {
		t.Errorf("empty filters should encode to no parameters, got %v", values)
	}
}

// Encoding then decoding a filter set must yield the same predicates.
func TestFiltersRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		filters model.Filters
	}{
		{"empty", model.Filters{}},
		{"text only", model.Filters{Q: "maintenance", Supplier: "TechCorp"}},
		{
			"full set",
			model.Filters{
				Q:             "srv",
				Supplier:      "acme",
				Status:        "suspended",
				CategoryID:    int64Ptr(7),
				MinValue:      floatPtr(0),
				MaxValue:      floatPtr(99999.99),
				StartDateFrom: "2023-01-01",
				StartDateTo:   "2023-12-31",
				EndDateFrom:   "2024-01-01",
				EndDateTo:     "2025-01-01",
			},
		},
		{"fractional value", model.Filters{MinValue: floatPtr(1234.56)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeFilters(EncodeFilters(tt.filters))
			if !got.Equal(tt.filters) {
				t.Errorf("round trip changed filters: got %+v, want %+v", got, tt.filters)
			}
		})
	}
}

func TestEncodePagination(t *testing.T) {
	values := url.Values{}
	EncodePagination(values, model.Pagination{Page: 2, PageSize: 25, SortBy: "value", SortDir: model.SortAsc})

	expected := map[string]string{
		"page":      "2",
		"page_size": "25",
		"sort_by":   "value",
		"sort_dir":  "asc",
	}
	for key, want := range expected {
		if got := values.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestEncodePaginationSkipsZeroValues(t *testing.T) {
	values := url.Values{}
	EncodePagination(values, model.Pagination{})
	if len(values) != 0 {
		t.Errorf("zero pagination should encode to no parameters, got %v", values)
	}
}

func TestChangeFiltersResetsPage(t *testing.T) {
	p := model.Pagination{Page: 5, PageSize: 25, SortBy: "value", SortDir: model.SortDesc}
	newFilters := model.Filters{Status: "active"}

	f, got := ChangeFilters(p, newFilters)

	if !f.Equal(newFilters) {
		t.Errorf("filters = %+v, want %+v", f, newFilters)
	}
	if got.Page != 1 {
		t.Errorf("page = %d, want 1", got.Page)
	}
	if got.PageSize != 25 || got.SortBy != "value" || got.SortDir != model.SortDesc {
		t.Errorf("filter change must keep the rest of the pagination, got %+v", got)
	}
}

func TestApplySort(t *testing.T) {
	tests := []struct {
		name     string
		current  model.Pagination
		field    string
		wantBy   string
		wantDir  string
		wantPage int
	}{
		{
			name:     "new field sorts ascending",
			current:  model.Pagination{Page: 3, PageSize: 10, SortBy: "start_date", SortDir: model.SortDesc},
			field:    "value",
			wantBy:   "value",
			wantDir:  model.SortAsc,
			wantPage: 1,
		},
		{
			name:     "same field toggles asc to desc",
			current:  model.Pagination{Page: 1, PageSize: 10, SortBy: "value", SortDir: model.SortAsc},
			field:    "value",
			wantBy:   "value",
			wantDir:  model.SortDesc,
			wantPage: 1,
		},
		{
			name:     "same field toggles desc to asc",
			current:  model.Pagination{Page: 2, PageSize: 10, SortBy: "supplier", SortDir: model.SortDesc},
			field:    "supplier",
			wantBy:   "supplier",
			wantDir:  model.SortAsc,
			wantPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySort(tt.current, tt.field)
			if got.SortBy != tt.wantBy || got.SortDir != tt.wantDir || got.Page != tt.wantPage {
				t.Errorf("ApplySort = %+v, want sort_by=%s sort_dir=%s page=%d",
					got, tt.wantBy, tt.wantDir, tt.wantPage)
			}
			if got.PageSize != tt.current.PageSize {
				t.Errorf("sorting must not change page size: got %d", got.PageSize)
			}
		})
	}
}

// Toggling the same column twice restores the original direction.
func TestApplySortDoubleToggle(t *testing.T) {
	p := model.Pagination{Page: 1, PageSize: 10, SortBy: "value", SortDir: model.SortAsc}
	got := ApplySort(ApplySort(p, "value"), "value")
	if got.SortDir != model.SortAsc {
		t.Errorf("double toggle should restore asc, got %s", got.SortDir)
	}
}
