package model

// Filters is a sparse predicate set narrowing a contract listing.
// Zero-value string fields and nil numeric fields mean "no constraint";
// an empty string is never a constraint.
type Filters struct {
	Q             string   `json:"q,omitempty"`
	Supplier      string   `json:"supplier,omitempty"`
	Status        string   `json:"status,omitempty"`
	CategoryID    *int64   `json:"category_id,omitempty"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	StartDateFrom string   `json:"start_date_from,omitempty"`
	StartDateTo   string   `json:"start_date_to,omitempty"`
	EndDateFrom   string   `json:"end_date_from,omitempty"`
	EndDateTo     string   `json:"end_date_to,omitempty"`
}

// IsZero reports whether no predicate is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Equal reports whether two filter sets express the same predicates.
func (f Filters) Equal(other Filters) bool {
	if f.Q != other.Q || f.Supplier != other.Supplier || f.Status != other.Status {
		return false
	}
	if f.StartDateFrom != other.StartDateFrom || f.StartDateTo != other.StartDateTo {
		return false
	}
	if f.EndDateFrom != other.EndDateFrom || f.EndDateTo != other.EndDateTo {
		return false
	}
	if !eqInt64Ptr(f.CategoryID, other.CategoryID) {
		return false
	}
	return eqFloatPtr(f.MinValue, other.MinValue) && eqFloatPtr(f.MaxValue, other.MaxValue)
}

func eqInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Pagination governs listing windowing and ordering.
type Pagination struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
	SortDir  string `json:"sort_dir"`
}

// DefaultPagination matches the listing's initial view: first page of ten,
// newest start date first.
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 10,
		SortBy:   "start_date",
		SortDir:  SortDesc,
	}
}
