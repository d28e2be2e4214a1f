// Package state holds the client-side projection of server contract state:
// the current listing page, reference categories, the selected contract and
// the filter, pagination, loading and error status that belong to them.
//
// The store only changes through the closed set of Action variants below,
// each applied atomically. It is created by New and passed to whoever needs
// it; there is no package-level instance.
package state

import (
	"sync"

	"github.com/meninojhony/modec-challenger/model"
)

// Snapshot is one consistent view of the store.
type Snapshot struct {
	Contracts        []model.Contract
	Categories       []model.Category
	SelectedContract *model.Contract
	TotalContracts   int
	CurrentPage      int
	TotalPages       int
	Loading          bool
	Error            string
	Filters          model.Filters
	Pagination       model.Pagination
}

// Action is one of the closed set of store transitions. Each variant is a
// pure function of (previous snapshot, payload).
type Action interface {
	apply(s Snapshot) Snapshot
}

// SetLoading sets the loading flag without touching error or data.
type SetLoading struct {
	Loading bool
}

func (a SetLoading) apply(s Snapshot) Snapshot {
	s.Loading = a.Loading
	return s
}

// SetError records an error message and terminates the loading cycle.
// An empty message clears the error.
type SetError struct {
	Message string
}

func (a SetError) apply(s Snapshot) Snapshot {
	s.Error = a.Message
	s.Loading = false
	return s
}

// SetContractsPage replaces the listing portion of the state wholesale:
// items, total, current page and page count move together, the error is
// cleared and loading ends. This is the only transition that changes the
// listing.
type SetContractsPage struct {
	Contracts []model.Contract
	Total     int
	Page      int
	Pages     int
}

func (a SetContractsPage) apply(s Snapshot) Snapshot {
	s.Contracts = a.Contracts
	s.TotalContracts = a.Total
	s.CurrentPage = a.Page
	s.TotalPages = a.Pages
	s.Loading = false
	s.Error = ""
	return s
}

// SetCategories replaces the category reference data wholesale.
type SetCategories struct {
	Categories []model.Category
}

func (a SetCategories) apply(s Snapshot) Snapshot {
	s.Categories = a.Categories
	return s
}

// SetSelectedContract replaces the single-selection slot. A nil contract
// clears it.
type SetSelectedContract struct {
	Contract *model.Contract
}

func (a SetSelectedContract) apply(s Snapshot) Snapshot {
	s.SelectedContract = a.Contract
	return s
}

// SetFilters replaces the filter set wholesale; callers merge beforehand.
type SetFilters struct {
	Filters model.Filters
}

func (a SetFilters) apply(s Snapshot) Snapshot {
	s.Filters = a.Filters
	return s
}

// SetPagination replaces the pagination state wholesale.
type SetPagination struct {
	Pagination model.Pagination
}

func (a SetPagination) apply(s Snapshot) Snapshot {
	s.Pagination = a.Pagination
	return s
}

// ApplyUpdatedContract replaces the matching listing entry in place,
// preserving order, and refreshes the selection if it points at the same
// contract. Unknown ids are a no-op.
type ApplyUpdatedContract struct {
	Contract model.Contract
}

func (a ApplyUpdatedContract) apply(s Snapshot) Snapshot {
	for i := range s.Contracts {
		if s.Contracts[i].ID == a.Contract.ID {
			contracts := make([]model.Contract, len(s.Contracts))
			copy(contracts, s.Contracts)
			contracts[i] = a.Contract
			s.Contracts = contracts
			break
		}
	}
	if s.SelectedContract != nil && s.SelectedContract.ID == a.Contract.ID {
		updated := a.Contract
		s.SelectedContract = &updated
	}
	return s
}

// ApplyDeletedContract removes the matching listing entry, keeping the rest
// in order, and clears the selection if it matched. Unknown ids are a no-op.
type ApplyDeletedContract struct {
	ID string
}

func (a ApplyDeletedContract) apply(s Snapshot) Snapshot {
	for i := range s.Contracts {
		if s.Contracts[i].ID == a.ID {
			contracts := make([]model.Contract, 0, len(s.Contracts)-1)
			contracts = append(contracts, s.Contracts[:i]...)
			contracts = append(contracts, s.Contracts[i+1:]...)
			s.Contracts = contracts
			break
		}
	}
	if s.SelectedContract != nil && s.SelectedContract.ID == a.ID {
		s.SelectedContract = nil
	}
	return s
}

// Store serializes Action application over a Snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// New returns a store with an empty listing and default pagination.
func New() *Store {
	return &Store{
		snapshot: Snapshot{
			Contracts:  []model.Contract{},
			Categories: []model.Category{},
			Pagination: model.DefaultPagination(),
		},
	}
}

// Dispatch applies the action atomically.
func (st *Store) Dispatch(action Action) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = action.apply(st.snapshot)
}

// Snapshot returns the current state.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot
}
