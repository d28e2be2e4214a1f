// Package urlsync maps the structured filter and pagination state to and
// from a flat URL query string, so that the address bar and the in-memory
// listing state stay mutually derivable.
package urlsync

import (
	"net/url"
	"strconv"

	"github.com/meninojhony/modec-challenger/model"
)

// Recognized query parameter keys. Anything else in the query string is
// ignored on decode and never produced on encode.
const (
	KeyQ             = "q"
	KeySupplier      = "supplier"
	KeyStatus        = "status"
	KeyCategoryID    = "category_id"
	KeyMinValue      = "min_value"
	KeyMaxValue      = "max_value"
	KeyStartDateFrom = "start_date_from"
	KeyStartDateTo   = "start_date_to"
	KeyEndDateFrom   = "end_date_from"
	KeyEndDateTo     = "end_date_to"
)

// DecodeFilters parses a query string into a filter set. Keys that are
// absent or empty are omitted entirely. Malformed numeric values, and value
// bounds below zero, are silently dropped rather than defaulted or reported.
func DecodeFilters(values url.Values) model.Filters {
	var f model.Filters

	f.Q = values.Get(KeyQ)
	f.Supplier = values.Get(KeySupplier)
	f.Status = values.Get(KeyStatus)
	f.StartDateFrom = values.Get(KeyStartDateFrom)
	f.StartDateTo = values.Get(KeyStartDateTo)
	f.EndDateFrom = values.Get(KeyEndDateFrom)
	f.EndDateTo = values.Get(KeyEndDateTo)

	if raw := values.Get(KeyCategoryID); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	if v, ok := parseValueBound(values.Get(KeyMinValue)); ok {
		f.MinValue = &v
	}
	if v, ok := parseValueBound(values.Get(KeyMaxValue)); ok {
		f.MaxValue = &v
	}

	return f
}

// parseValueBound accepts only well-formed, non-negative numbers.
func parseValueBound(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// EncodeFilters renders a filter set as query parameters. Unset fields
// produce no parameter at all.
func EncodeFilters(f model.Filters) url.Values {
	values := url.Values{}

	setIfPresent(values, KeyQ, f.Q)
	setIfPresent(values, KeySupplier, f.Supplier)
	setIfPresent(values, KeyStatus, f.Status)
	setIfPresent(values, KeyStartDateFrom, f.StartDateFrom)
	setIfPresent(values, KeyStartDateTo, f.StartDateTo)
	setIfPresent(values, KeyEndDateFrom, f.EndDateFrom)
	setIfPresent(values, KeyEndDateTo, f.EndDateTo)

	if f.CategoryID != nil {
		values.Set(KeyCategoryID, strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.MinValue != nil {
		values.Set(KeyMinValue, strconv.FormatFloat(*f.MinValue, 'f', -1, 64))
	}
	if f.MaxValue != nil {
		values.Set(KeyMaxValue, strconv.FormatFloat(*f.MaxValue, 'f', -1, 64))
	}

	return values
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

// EncodePagination appends pagination parameters to the query values.
func EncodePagination(values url.Values, p model.Pagination) {
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.SortBy != "" {
		values.Set("sort_by", p.SortBy)
	}
	if p.SortDir != "" {
		values.Set("sort_dir", p.SortDir)
	}
}

// ChangeFilters replaces the filter set and resets the page to 1: a filter
// change invalidates the meaning of "page N" under the previous filters.
// The rest of the pagination state is kept.
func ChangeFilters(p model.Pagination, f model.Filters) (model.Filters, model.Pagination) {
	p.Page = 1
	return f, p
}

// ApplySort handles a sort interaction. Selecting the field already sorted
// by toggles the direction; selecting a different field sorts ascending and
// resets to the first page. Filters are never touched by sorting.
func ApplySort(p model.Pagination, field string) model.Pagination {
	if p.SortBy == field {
		if p.SortDir == model.SortAsc {
			p.SortDir = model.SortDesc
		} else {
			p.SortDir = model.SortAsc
		}
	} else {
		p.SortBy = field
		p.SortDir = model.SortAsc
	}
	p.Page = 1
	return p
}
