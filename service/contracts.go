package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meninojhony/modec-challenger/model"
)

const (
	maxPageSize = 100
	// expiringHorizonDays is the dashboard's "expiring soon" window.
	expiringHorizonDays = 30
)

// ContractService owns contract business rules: uniqueness of the contract
// number, category existence, date ordering, and the change-history trail.
type ContractService struct {
	repo Repository
}

func NewContractService(repo Repository) *ContractService {
	return &ContractService{repo: repo}
}

// List returns one page of the filtered listing. Malformed date bounds are
// dropped from the filters and pagination is clamped before it reaches the
// repository.
func (s *ContractService) List(ctx context.Context, filters model.Filters, pagination model.Pagination) (*model.ContractPage, error) {
	filters = sanitizeFilters(filters)
	pagination = clampPagination(pagination)

	items, total, err := s.repo.ListContracts(ctx, filters, pagination)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	pages := 0
	if total > 0 {
		pages = (total + pagination.PageSize - 1) / pagination.PageSize
	}
	return &model.ContractPage{
		Items:    items,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
		Pages:    pages,
	}, nil
}

// Get returns a contract or ErrNotFound.
func (s *ContractService) Get(ctx context.Context, id string) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract with id '%s'", ErrNotFound, id)
	}
	return contract, nil
}

// Create validates and stores a new contract and records its creation in
// the change history.
func (s *ContractService) Create(ctx context.Context, input model.ContractCreate, createdBy string) (*model.Contract, error) {
	status := input.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrInvalid, status)
	}
	if input.Value < 0 {
		return nil, fmt.Errorf("%w: value must be non-negative", ErrInvalid)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end_date must be after start_date", ErrInvalid)
	}

	existing, err := s.repo.GetContractByNumber(ctx, input.ContractNumber)
	if err != nil {
		return nil, fmt.Errorf("check contract number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: contract with number '%s' already exists", ErrConflict, input.ContractNumber)
	}

	category, err := s.repo.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category with id %d does not exist", ErrInvalid, input.CategoryID)
	}

	now := time.Now()
	contract := &model.Contract{
		ID:             uuid.New().String(),
		ContractNumber: input.ContractNumber,
		Supplier:       input.Supplier,
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		Category:       category,
		Responsible:    input.Responsible,
		Status:         status,
		Value:          input.Value,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}

	s.record(ctx, contract.ID, createdBy, map[string]model.FieldChange{
		"created": {Old: nil, New: contract.ContractNumber},
	})
	return contract, nil
}

// Update applies a sparse update, validates the result and records the
// field-level differences.
func (s *ContractService) Update(ctx context.Context, id string, input model.ContractUpdate, changedBy string) (*model.Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]model.FieldChange{}

	if input.ContractNumber != nil && *input.ContractNumber != contract.ContractNumber {
		existing, err := s.repo.GetContractByNumber(ctx, *input.ContractNumber)
		if err != nil {
			return nil, fmt.Errorf("check contract number: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: contract with number '%s' already exists", ErrConflict, *input.ContractNumber)
		}
		changes["contract_number"] = model.FieldChange{Old: contract.ContractNumber, New: *input.ContractNumber}
		contract.ContractNumber = *input.ContractNumber
	}
	if input.Supplier != nil && *input.Supplier != contract.Supplier {
		changes["supplier"] = model.FieldChange{Old: contract.Supplier, New: *input.Supplier}
		contract.Supplier = *input.Supplier
	}
	if input.Description != nil && *input.Description != contract.Description {
		changes["description"] = model.FieldChange{Old: contract.Description, New: *input.Description}
		contract.Description = *input.Description
	}
	if input.CategoryID != nil && *input.CategoryID != contract.CategoryID {
		category, err := s.repo.GetCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if category == nil {
			return nil, fmt.Errorf("%w: category with id %d does not exist", ErrInvalid, *input.CategoryID)
		}
		changes["category_id"] = model.FieldChange{Old: contract.CategoryID, New: *input.CategoryID}
		contract.CategoryID = *input.CategoryID
		contract.Category = category
	}
	if input.Responsible != nil && *input.Responsible != contract.Responsible {
		changes["responsible"] = model.FieldChange{Old: contract.Responsible, New: *input.Responsible}
		contract.Responsible = *input.Responsible
	}
	if input.Status != nil && *input.Status != contract.Status {
		if !model.ValidStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status '%s'", ErrInvalid, *input.Status)
		}
		changes["status"] = model.FieldChange{Old: contract.Status, New: *input.Status}
		contract.Status = *input.Status
	}
	if input.Value != nil && *input.Value != contract.Value {
		if *input.Value < 0 {
			return nil, fmt.Errorf("%w: value must be non-negative", ErrInvalid)
		}
		changes["value"] = model.FieldChange{Old: contract.Value, New: *input.Value}
		contract.Value = *input.Value
	}
	if input.StartDate != nil && !input.StartDate.Equal(contract.StartDate.Time) {
		changes["start_date"] = model.FieldChange{Old: contract.StartDate.String(), New: input.StartDate.String()}
		contract.StartDate = *input.StartDate
	}
	if input.EndDate != nil && !input.EndDate.Equal(contract.EndDate.Time) {
		changes["end_date"] = model.FieldChange{Old: contract.EndDate.String(), New: input.EndDate.String()}
		contract.EndDate = *input.EndDate
	}

	if !contract.EndDate.After(contract.StartDate) {
		return nil, fmt.Errorf("%w: end_date must be after start_date", ErrInvalid)
	}

	if len(changes) == 0 {
		return contract, nil
	}

	if err := s.repo.UpdateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("update contract: %w", err)
	}
	s.record(ctx, contract.ID, changedBy, changes)
	return contract, nil
}

// Delete removes a contract or returns ErrNotFound.
func (s *ContractService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteContract(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: contract with id '%s'", ErrNotFound, id)
	}
	return nil
}

// History returns a contract's change records, newest first.
func (s *ContractService) History(ctx context.Context, id string) ([]model.ChangeHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if history == nil {
		history = []model.ChangeHistory{}
	}
	return history, nil
}

// Stats returns the dashboard summary.
func (s *ContractService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.repo.Stats(ctx, expiringHorizonDays)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// record appends a change-history entry. History is an audit trail; a
// failure to write it does not fail the mutation that succeeded.
func (s *ContractService) record(ctx context.Context, contractID, changedBy string, changes map[string]model.FieldChange) {
	if changedBy == "" {
		changedBy = "system"
	}
	entry := &model.ChangeHistory{
		ContractID: contractID,
		ChangedBy:  changedBy,
		Changes:    changes,
		ChangedAt:  time.Now(),
	}
	_ = s.repo.AddHistory(ctx, entry)
}

// sanitizeFilters drops malformed date bounds, mirroring the query-string
// policy of dropping malformed numerics.
func sanitizeFilters(f model.Filters) model.Filters {
	f.StartDateFrom = validDate(f.StartDateFrom)
	f.StartDateTo = validDate(f.StartDateTo)
	f.EndDateFrom = validDate(f.EndDateFrom)
	f.EndDateTo = validDate(f.EndDateTo)
	return f
}

func validDate(s string) string {
	if s == "" {
		return ""
	}
	if _, err := model.ParseDate(s); err != nil {
		return ""
	}
	return s
}

func clampPagination(p model.Pagination) model.Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if !sortColumns[p.SortBy] {
		p.SortBy = "start_date"
	}
	if p.SortDir != model.SortAsc && p.SortDir != model.SortDesc {
		p.SortDir = model.SortDesc
	}
	return p
}
