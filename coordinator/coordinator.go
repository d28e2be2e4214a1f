// Package coordinator sequences remote calls and drives store transitions.
// Every operation follows the same contract: clear the previous error, raise
// the loading flag, invoke the remote operation, then either apply the
// matching success transition or record the failure message. Failures are
// never swallowed; they are recorded in the store and returned to the
// caller, so flows that depend on the outcome can branch.
package coordinator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/meninojhony/modec-challenger/client"
	"github.com/meninojhony/modec-challenger/model"
	"github.com/meninojhony/modec-challenger/state"
)

// Fallback messages used when the remote failure carries no structured
// message (network error, opaque body).
const (
	msgFetchContracts  = "Failed to fetch contracts"
	msgFetchContract   = "Failed to fetch contract"
	msgCreateContract  = "Failed to create contract"
	msgUpdateContract  = "Failed to update contract"
	msgDeleteContract  = "Failed to delete contract"
	msgFetchCategories = "Failed to fetch categories"
)

// Remote is the slice of the API client the coordinator drives.
type Remote interface {
	ListContracts(ctx context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error)
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	CreateContract(ctx context.Context, input model.ContractCreate) (*model.Contract, error)
	UpdateContract(ctx context.Context, id string, input model.ContractUpdate) (*model.Contract, error)
	DeleteContract(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Coordinator owns the loading/error protocol between one Remote and one
// store. List and detail fetches carry a generation token: when a slow
// request resolves after a newer one was issued for the same operation
// kind, its result is discarded instead of overwriting fresher state.
type Coordinator struct {
	remote Remote
	store  *state.Store

	listGen   atomic.Uint64
	detailGen atomic.Uint64
}

// New wires a coordinator to its remote and store.
func New(remote Remote, store *state.Store) *Coordinator {
	return &Coordinator{remote: remote, store: store}
}

// FetchList fetches one listing page and stores it. Nil filters or
// pagination default to the store's current values. A failed fetch records
// the error and leaves the previous listing untouched.
func (c *Coordinator) FetchList(ctx context.Context, filters *model.Filters, pagination *model.Pagination) error {
	snapshot := c.store.Snapshot()
	f := snapshot.Filters
	if filters != nil {
		f = *filters
	}
	p := snapshot.Pagination
	if pagination != nil {
		p = *pagination
	}

	token := c.listGen.Add(1)
	c.begin()

	page, err := c.remote.ListContracts(ctx, f, p)
	if token != c.listGen.Load() {
		// A newer list fetch was issued while this one was in flight.
		return err
	}
	if err != nil {
		c.fail(err, msgFetchContracts)
		return err
	}

	c.store.Dispatch(state.SetContractsPage{
		Contracts: page.Items,
		Total:     page.Total,
		Page:      page.Page,
		Pages:     page.Pages,
	})
	return nil
}

// FetchOne fetches a single contract and selects it. The failure is
// returned so callers can decide between a not-found and a generic error
// rendering.
func (c *Coordinator) FetchOne(ctx context.Context, id string) (*model.Contract, error) {
	token := c.detailGen.Add(1)
	c.begin()

	contract, err := c.remote.GetContract(ctx, id)
	if token != c.detailGen.Load() {
		return contract, err
	}
	if err != nil {
		c.fail(err, msgFetchContract)
		return nil, err
	}

	c.store.Dispatch(state.SetSelectedContract{Contract: contract})
	c.store.Dispatch(state.SetLoading{Loading: false})
	return contract, nil
}

// Create sends a creation payload. The created contract is returned but not
// inserted into the listing; the projection is refreshed from the server by
// the caller's subsequent FetchList or navigation.
func (c *Coordinator) Create(ctx context.Context, input model.ContractCreate) (*model.Contract, error) {
	c.begin()

	contract, err := c.remote.CreateContract(ctx, input)
	if err != nil {
		c.fail(err, msgCreateContract)
		return nil, err
	}

	c.store.Dispatch(state.SetLoading{Loading: false})
	return contract, nil
}

// Update sends a sparse update and folds the result into the listing and
// the selection.
func (c *Coordinator) Update(ctx context.Context, id string, input model.ContractUpdate) (*model.Contract, error) {
	c.begin()

	contract, err := c.remote.UpdateContract(ctx, id, input)
	if err != nil {
		c.fail(err, msgUpdateContract)
		return nil, err
	}

	c.store.Dispatch(state.ApplyUpdatedContract{Contract: *contract})
	c.store.Dispatch(state.SetLoading{Loading: false})
	return contract, nil
}

// Remove deletes a contract and drops it from the listing. A failed delete
// leaves the listing untouched.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	c.begin()

	if err := c.remote.DeleteContract(ctx, id); err != nil {
		c.fail(err, msgDeleteContract)
		return err
	}

	c.store.Dispatch(state.ApplyDeletedContract{ID: id})
	c.store.Dispatch(state.SetLoading{Loading: false})
	return nil
}

// FetchCategories refreshes the category reference data. Categories load
// outside the loading protocol: they back form selects, not the listing.
func (c *Coordinator) FetchCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := c.remote.ListCategories(ctx)
	if err != nil {
		c.store.Dispatch(state.SetError{Message: failureMessage(err, msgFetchCategories)})
		return nil, err
	}

	c.store.Dispatch(state.SetCategories{Categories: categories})
	return categories, nil
}

// begin starts a loading cycle: the previous error is cleared first, then
// the loading flag is raised.
func (c *Coordinator) begin() {
	c.store.Dispatch(state.SetError{Message: ""})
	c.store.Dispatch(state.SetLoading{Loading: true})
}

func (c *Coordinator) fail(err error, fallback string) {
	c.store.Dispatch(state.SetError{Message: failureMessage(err, fallback)})
}

// failureMessage prefers the structured message from the remote response
// body and falls back to the operation-specific default.
func failureMessage(err error, fallback string) string {
	var remoteErr *client.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return fallback
}
