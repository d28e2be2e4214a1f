package service

import (
	"context"
	"errors"

	"github.com/meninojhony/modec-challenger/model"
)

// Sentinel errors translated by the handlers into the API error envelope.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// sortColumns is the whitelist of listing sort fields. Anything else falls
// back to start_date.
var sortColumns = map[string]bool{
	"start_date":      true,
	"end_date":        true,
	"created_at":      true,
	"updated_at":      true,
	"contract_number": true,
	"supplier":        true,
	"value":           true,
	"status":          true,
}

// Repository is the persistence boundary for contracts, categories and
// change history. Lookups return (nil, nil) when the record is absent;
// translating absence into ErrNotFound is the service layer's job.
type Repository interface {
	CreateContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	GetContractByNumber(ctx context.Context, number string) (*model.Contract, error)
	UpdateContract(ctx context.Context, contract *model.Contract) error
	DeleteContract(ctx context.Context, id string) (bool, error)
	ListContracts(ctx context.Context, filters model.Filters, pagination model.Pagination) ([]model.Contract, int, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)
	CountContractsInCategory(ctx context.Context, id int64) (int, error)

	AddHistory(ctx context.Context, entry *model.ChangeHistory) error
	ListHistory(ctx context.Context, contractID string) ([]model.ChangeHistory, error)

	Stats(ctx context.Context, horizonDays int) (*model.DashboardStats, error)
}
