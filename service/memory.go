package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meninojhony/modec-challenger/model"
)

// MemoryRepository is an in-memory Repository. It backs tests and DSN-less
// development runs; the server switches to Postgres when a DSN is
// configured.
type MemoryRepository struct {
	mu         sync.RWMutex
	contracts  map[string]*model.Contract
	categories map[int64]*model.Category
	history    []model.ChangeHistory

	nextCategoryID int64
	nextHistoryID  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		contracts:  make(map[string]*model.Contract),
		categories: make(map[int64]*model.Category),
	}
}

func (r *MemoryRepository) CreateContract(_ context.Context, contract *model.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *contract
	if cat, ok := r.categories[stored.CategoryID]; ok {
		copied := *cat
		stored.Category = &copied
	}
	r.contracts[stored.ID] = &stored
	*contract = stored
	return nil
}

func (r *MemoryRepository) GetContract(_ context.Context, id string) (*model.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *MemoryRepository) GetContractByNumber(_ context.Context, number string) (*model.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.contracts {
		if c.ContractNumber == number {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateContract(_ context.Context, contract *model.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *contract
	stored.UpdatedAt = time.Now()
	if cat, ok := r.categories[stored.CategoryID]; ok {
		copied := *cat
		stored.Category = &copied
	}
	r.contracts[stored.ID] = &stored
	*contract = stored
	return nil
}

func (r *MemoryRepository) DeleteContract(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[id]; !ok {
		return false, nil
	}
	delete(r.contracts, id)
	return true, nil
}

func (r *MemoryRepository) ListContracts(_ context.Context, filters model.Filters, pagination model.Pagination) ([]model.Contract, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.Contract
	for _, c := range r.contracts {
		if matches(c, filters) {
			matched = append(matched, *c)
		}
	}

	sortContracts(matched, pagination.SortBy, pagination.SortDir)

	total := len(matched)
	offset := (pagination.Page - 1) * pagination.PageSize
	if offset >= total {
		return []model.Contract{}, total, nil
	}
	end := offset + pagination.PageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matches(c *model.Contract, f model.Filters) bool {
	if f.Supplier != "" && !containsFold(c.Supplier, f.Supplier) {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.CategoryID != nil && c.CategoryID != *f.CategoryID {
		return false
	}
	if f.MinValue != nil && c.Value < *f.MinValue {
		return false
	}
	if f.MaxValue != nil && c.Value > *f.MaxValue {
		return false
	}
	if !dateAtLeast(c.StartDate, f.StartDateFrom) || !dateAtMost(c.StartDate, f.StartDateTo) {
		return false
	}
	if !dateAtLeast(c.EndDate, f.EndDateFrom) || !dateAtMost(c.EndDate, f.EndDateTo) {
		return false
	}
	if f.Q != "" {
		if !containsFold(c.ContractNumber, f.Q) &&
			!containsFold(c.Supplier, f.Q) &&
			!containsFold(c.Description, f.Q) &&
			!containsFold(c.Responsible, f.Q) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// dateAtLeast treats an empty or malformed bound as no constraint.
func dateAtLeast(d model.Date, bound string) bool {
	parsed, err := model.ParseDate(bound)
	if err != nil {
		return true
	}
	return !d.Before(parsed)
}

func dateAtMost(d model.Date, bound string) bool {
	parsed, err := model.ParseDate(bound)
	if err != nil {
		return true
	}
	return !d.After(parsed)
}

// sortContracts orders by the whitelisted field with the contract id as
// tiebreaker, matching the SQL ORDER BY of the Postgres repository.
func sortContracts(contracts []model.Contract, sortBy, sortDir string) {
	if !sortColumns[sortBy] {
		sortBy = "start_date"
	}
	desc := sortDir == model.SortDesc

	sort.Slice(contracts, func(i, j int) bool {
		a, b := contracts[i], contracts[j]
		if desc {
			a, b = b, a
		}
		switch sortBy {
		case "end_date":
			if !a.EndDate.Equal(b.EndDate.Time) {
				return a.EndDate.Before(b.EndDate)
			}
		case "created_at":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case "updated_at":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case "contract_number":
			if a.ContractNumber != b.ContractNumber {
				return a.ContractNumber < b.ContractNumber
			}
		case "supplier":
			if a.Supplier != b.Supplier {
				return a.Supplier < b.Supplier
			}
		case "value":
			if a.Value != b.Value {
				return a.Value < b.Value
			}
		case "status":
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		default: // start_date
			if !a.StartDate.Equal(b.StartDate.Time) {
				return a.StartDate.Before(b.StartDate)
			}
		}
		return a.ID < b.ID
	})
}

func (r *MemoryRepository) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Category, 0, len(r.categories))
	for _, cat := range r.categories {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) GetCategory(_ context.Context, id int64) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cat, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	copied := *cat
	return &copied, nil
}

func (r *MemoryRepository) GetCategoryByName(_ context.Context, name string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cat := range r.categories {
		if cat.Name == name {
			copied := *cat
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CreateCategory(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCategoryID++
	category.ID = r.nextCategoryID
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *MemoryRepository) UpdateCategory(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return nil
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *MemoryRepository) DeleteCategory(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

func (r *MemoryRepository) CountContractsInCategory(_ context.Context, id int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.contracts {
		if c.CategoryID == id {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) AddHistory(_ context.Context, entry *model.ChangeHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextHistoryID++
	entry.ID = r.nextHistoryID
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}
	r.history = append(r.history, *entry)
	return nil
}

func (r *MemoryRepository) ListHistory(_ context.Context, contractID string) ([]model.ChangeHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.ChangeHistory
	for _, entry := range r.history {
		if entry.ContractID == contractID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ChangedAt.After(out[j].ChangedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Stats(_ context.Context, horizonDays int) (*model.DashboardStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := model.DateOf(time.Now())
	horizon := model.DateOf(time.Now().AddDate(0, 0, horizonDays))

	stats := &model.DashboardStats{}
	for _, c := range r.contracts {
		stats.Total++
		stats.TotalValue += c.Value
		if c.Status == model.StatusActive {
			stats.Active++
		}
		if !c.EndDate.Before(today) && !c.EndDate.After(horizon) {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}
