package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meninojhony/modec-challenger/client"
	"github.com/meninojhony/modec-challenger/model"
	"github.com/meninojhony/modec-challenger/state"
)

// fakeRemote lets each test script the remote behavior per operation.
type fakeRemote struct {
	listFunc       func(ctx context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error)
	getFunc        func(ctx context.Context, id string) (*model.Contract, error)
	createFunc     func(ctx context.Context, input model.ContractCreate) (*model.Contract, error)
	updateFunc     func(ctx context.Context, id string, input model.ContractUpdate) (*model.Contract, error)
	deleteFunc     func(ctx context.Context, id string) error
	categoriesFunc func(ctx context.Context) ([]model.Category, error)
}

func (f *fakeRemote) ListContracts(ctx context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error) {
	return f.listFunc(ctx, filters, pagination)
}

func (f *fakeRemote) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	return f.getFunc(ctx, id)
}

func (f *fakeRemote) CreateContract(ctx context.Context, input model.ContractCreate) (*model.Contract, error) {
	return f.createFunc(ctx, input)
}

func (f *fakeRemote) UpdateContract(ctx context.Context, id string, input model.ContractUpdate) (*model.Contract, error) {
	return f.updateFunc(ctx, id, input)
}

func (f *fakeRemote) DeleteContract(ctx context.Context, id string) error {
	return f.deleteFunc(ctx, id)
}

func (f *fakeRemote) ListCategories(ctx context.Context) ([]model.Category, error) {
	return f.categoriesFunc(ctx)
}

func pageOf(contracts ...model.Contract) *model.ContractPage {
	return &model.ContractPage{Items: contracts, Total: len(contracts), Page: 1, PageSize: 10, Pages: 1}
}

func TestFetchListSuccess(t *testing.T) {
	remote := &fakeRemote{
		listFunc: func(_ context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error) {
			if filters.Status != "active" {
				t.Errorf("remote received filters %+v, want status=active", filters)
			}
			if pagination.Page != 2 {
				t.Errorf("remote received page %d, want 2", pagination.Page)
			}
			return &model.ContractPage{
				Items: []model.Contract{{ID: "c1"}, {ID: "c2"}},
				Total: 12, Page: 2, PageSize: 10, Pages: 2,
			}, nil
		},
	}
	store := state.New()
	coord := New(remote, store)

	filters := model.Filters{Status: "active"}
	pagination := model.Pagination{Page: 2, PageSize: 10, SortBy: "start_date", SortDir: model.SortDesc}
	if err := coord.FetchList(context.Background(), &filters, &pagination); err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}

	s := store.Snapshot()
	if len(s.Contracts) != 2 || s.TotalContracts != 12 || s.CurrentPage != 2 || s.TotalPages != 2 {
		t.Errorf("listing = %d items total=%d page=%d pages=%d, want 2/12/2/2",
			len(s.Contracts), s.TotalContracts, s.CurrentPage, s.TotalPages)
	}
	if s.Loading {
		t.Errorf("loading should end with the delivered page")
	}
	if s.Error != "" {
		t.Errorf("error should be clear, got %q", s.Error)
	}
}

// With nil filters and pagination the fetch uses whatever the store holds.
func TestFetchListDefaultsFromStore(t *testing.T) {
	var seenFilters model.Filters
	var seenPagination model.Pagination
	remote := &fakeRemote{
		listFunc: func(_ context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error) {
			seenFilters = filters
			seenPagination = pagination
			return pageOf(), nil
		},
	}
	store := state.New()
	store.Dispatch(state.SetFilters{Filters: model.Filters{Supplier: "Acme"}})
	store.Dispatch(state.SetPagination{Pagination: model.Pagination{Page: 4, PageSize: 25, SortBy: "value", SortDir: model.SortAsc}})

	if err := New(remote, store).FetchList(context.Background(), nil, nil); err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
	if seenFilters.Supplier != "Acme" {
		t.Errorf("remote received filters %+v, want supplier=Acme", seenFilters)
	}
	if seenPagination.Page != 4 || seenPagination.SortBy != "value" {
		t.Errorf("remote received pagination %+v, want store values", seenPagination)
	}
}

func TestFetchListFailureKeepsListing(t *testing.T) {
	calls := 0
	remote := &fakeRemote{
		listFunc: func(_ context.Context, _ model.Filters, _ model.Pagination) (*model.ContractPage, error) {
			calls++
			if calls == 1 {
				return pageOf(model.Contract{ID: "c1"}), nil
			}
			return nil, &client.RemoteError{Err: errors.New("connection refused")}
		},
	}
	store := state.New()
	coord := New(remote, store)

	if err := coord.FetchList(context.Background(), nil, nil); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if err := coord.FetchList(context.Background(), nil, nil); err == nil {
		t.Fatalf("second fetch should fail")
	}

	s := store.Snapshot()
	if len(s.Contracts) != 1 || s.Contracts[0].ID != "c1" {
		t.Errorf("a failed fetch must leave the previous listing, got %v", s.Contracts)
	}
	if s.Error != "Failed to fetch contracts" {
		t.Errorf("error = %q, want the fallback message", s.Error)
	}
	if s.Loading {
		t.Errorf("loading should end on failure")
	}
}

func TestFetchListStructuredErrorMessage(t *testing.T) {
	remote := &fakeRemote{
		listFunc: func(_ context.Context, _ model.Filters, _ model.Pagination) (*model.ContractPage, error) {
			return nil, &client.RemoteError{StatusCode: 400, Code: "ValidationError", Message: "Unknown sort field"}
		},
	}
	store := state.New()

	if err := New(remote, store).FetchList(context.Background(), nil, nil); err == nil {
		t.Fatalf("fetch should fail")
	}
	if s := store.Snapshot(); s.Error != "Unknown sort field" {
		t.Errorf("error = %q, want the server message", s.Error)
	}
}

// A slow fetch that resolves after a newer one was issued must not
// overwrite the newer result.
func TestFetchListStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	remote := &fakeRemote{}
	calls := 0
	remote.listFunc = func(_ context.Context, _ model.Filters, _ model.Pagination) (*model.ContractPage, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return pageOf(model.Contract{ID: "stale"}), nil
		}
		return pageOf(model.Contract{ID: "fresh"}), nil
	}
	store := state.New()
	coord := New(remote, store)

	done := make(chan error, 1)
	go func() {
		done <- coord.FetchList(context.Background(), nil, nil)
	}()
	<-started

	if err := coord.FetchList(context.Background(), nil, nil); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("first fetch never returned")
	}

	s := store.Snapshot()
	if len(s.Contracts) != 1 || s.Contracts[0].ID != "fresh" {
		t.Errorf("stale result overwrote the listing: %v", s.Contracts)
	}
}

func TestFetchOneSelects(t *testing.T) {
	remote := &fakeRemote{
		getFunc: func(_ context.Context, id string) (*model.Contract, error) {
			return &model.Contract{ID: id, ContractNumber: "CT-001"}, nil
		},
	}
	store := state.New()

	contract, err := New(remote, store).FetchOne(context.Background(), "c1")
	if err != nil {
		t.Fatalf("FetchOne failed: %v", err)
	}
	if contract.ID != "c1" {
		t.Errorf("contract.ID = %s, want c1", contract.ID)
	}

	s := store.Snapshot()
	if s.SelectedContract == nil || s.SelectedContract.ID != "c1" {
		t.Errorf("selection = %+v, want c1", s.SelectedContract)
	}
	if s.Loading || s.Error != "" {
		t.Errorf("loading=%v error=%q after success", s.Loading, s.Error)
	}
}

func TestFetchOneNotFound(t *testing.T) {
	remote := &fakeRemote{
		getFunc: func(_ context.Context, id string) (*model.Contract, error) {
			return nil, &client.RemoteError{StatusCode: 404, Code: "NotFoundError", Message: "contract with id 'nope'"}
		},
	}
	store := state.New()

	_, err := New(remote, store).FetchOne(context.Background(), "nope")
	if err == nil {
		t.Fatalf("FetchOne should fail")
	}
	var remoteErr *client.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.StatusCode != 404 {
		t.Errorf("caller should see the remote error, got %v", err)
	}
	if s := store.Snapshot(); s.Error != "contract with id 'nope'" {
		t.Errorf("error = %q", s.Error)
	}
}

func TestCreateDoesNotTouchListing(t *testing.T) {
	remote := &fakeRemote{
		createFunc: func(_ context.Context, input model.ContractCreate) (*model.Contract, error) {
			return &model.Contract{ID: "new", ContractNumber: input.ContractNumber}, nil
		},
	}
	store := state.New()
	store.Dispatch(state.SetContractsPage{Contracts: []model.Contract{{ID: "c1"}}, Total: 1, Page: 1, Pages: 1})

	contract, err := New(remote, store).Create(context.Background(), model.ContractCreate{ContractNumber: "CT-100"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if contract.ID != "new" {
		t.Errorf("contract.ID = %s", contract.ID)
	}

	s := store.Snapshot()
	if len(s.Contracts) != 1 || s.Contracts[0].ID != "c1" {
		t.Errorf("create must not insert into the listing, got %v", s.Contracts)
	}
	if s.Loading {
		t.Errorf("loading should end after create")
	}
}

func TestUpdateFoldsIntoListing(t *testing.T) {
	remote := &fakeRemote{
		updateFunc: func(_ context.Context, id string, _ model.ContractUpdate) (*model.Contract, error) {
			return &model.Contract{ID: id, Value: 777}, nil
		},
	}
	store := state.New()
	store.Dispatch(state.SetContractsPage{
		Contracts: []model.Contract{{ID: "c1", Value: 1}, {ID: "c2", Value: 2}},
		Total:     2, Page: 1, Pages: 1,
	})

	if _, err := New(remote, store).Update(context.Background(), "c2", model.ContractUpdate{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	s := store.Snapshot()
	if s.Contracts[1].Value != 777 {
		t.Errorf("listing entry not refreshed: %+v", s.Contracts[1])
	}
	if s.Contracts[0].Value != 1 {
		t.Errorf("other entries must not change: %+v", s.Contracts[0])
	}
}

func TestRemoveDropsFromListing(t *testing.T) {
	remote := &fakeRemote{
		deleteFunc: func(_ context.Context, _ string) error { return nil },
	}
	store := state.New()
	store.Dispatch(state.SetContractsPage{
		Contracts: []model.Contract{{ID: "c1"}, {ID: "c2"}},
		Total:     2, Page: 1, Pages: 1,
	})

	if err := New(remote, store).Remove(context.Background(), "c1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	s := store.Snapshot()
	if len(s.Contracts) != 1 || s.Contracts[0].ID != "c2" {
		t.Errorf("listing after remove = %v", s.Contracts)
	}
}

func TestRemoveFailureKeepsListing(t *testing.T) {
	remote := &fakeRemote{
		deleteFunc: func(_ context.Context, _ string) error {
			return &client.RemoteError{Err: errors.New("network down")}
		},
	}
	store := state.New()
	store.Dispatch(state.SetContractsPage{
		Contracts: []model.Contract{{ID: "c1"}},
		Total:     1, Page: 1, Pages: 1,
	})

	if err := New(remote, store).Remove(context.Background(), "c1"); err == nil {
		t.Fatalf("Remove should fail")
	}

	s := store.Snapshot()
	if len(s.Contracts) != 1 {
		t.Errorf("a failed delete must leave the listing, got %v", s.Contracts)
	}
	if s.Error != "Failed to delete contract" {
		t.Errorf("error = %q, want the fallback message", s.Error)
	}
}

func TestFetchCategories(t *testing.T) {
	remote := &fakeRemote{
		categoriesFunc: func(_ context.Context) ([]model.Category, error) {
			return []model.Category{{ID: 1, Name: "IT Services"}}, nil
		},
	}
	store := state.New()

	categories, err := New(remote, store).FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "IT Services" {
		t.Errorf("categories = %v", categories)
	}
	if s := store.Snapshot(); len(s.Categories) != 1 {
		t.Errorf("store categories = %v", s.Categories)
	}
}

// Category fetches run outside the loading protocol: they must not raise
// the listing's loading flag.
func TestFetchCategoriesSkipsLoading(t *testing.T) {
	remote := &fakeRemote{
		categoriesFunc: func(_ context.Context) ([]model.Category, error) {
			return nil, errors.New("boom")
		},
	}
	store := state.New()

	if _, err := New(remote, store).FetchCategories(context.Background()); err == nil {
		t.Fatalf("fetch should fail")
	}
	s := store.Snapshot()
	if s.Loading {
		t.Errorf("category fetch must not raise loading")
	}
	if s.Error != "Failed to fetch categories" {
		t.Errorf("error = %q", s.Error)
	}
}

// Starting a new cycle clears the previous error before raising loading.
func TestBeginClearsPreviousError(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	remote := &fakeRemote{
		listFunc: func(_ context.Context, _ model.Filters, _ model.Pagination) (*model.ContractPage, error) {
			close(started)
			<-release
			return pageOf(), nil
		},
	}
	store := state.New()
	store.Dispatch(state.SetError{Message: "previous failure"})
	coord := New(remote, store)

	done := make(chan error, 1)
	go func() { done <- coord.FetchList(context.Background(), nil, nil) }()
	<-started

	s := store.Snapshot()
	if s.Error != "" {
		t.Errorf("error should be cleared when the cycle starts, got %q", s.Error)
	}
	if !s.Loading {
		t.Errorf("loading should be raised while the fetch is in flight")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}
