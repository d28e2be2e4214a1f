package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meninojhony/modec-challenger/model"
)

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const contractColumns = `
	c.id, c.contract_number, c.supplier, c.description, c.category_id,
	c.responsible, c.status, c.value, c.start_date, c.end_date,
	c.created_at, c.updated_at,
	cat.id, cat.name, COALESCE(cat.description, ''), cat.created_at`

func scanContract(row pgx.Row) (*model.Contract, error) {
	var c model.Contract
	var cat model.Category
	var startDate, endDate time.Time
	err := row.Scan(
		&c.ID, &c.ContractNumber, &c.Supplier, &c.Description, &c.CategoryID,
		&c.Responsible, &c.Status, &c.Value, &startDate, &endDate,
		&c.CreatedAt, &c.UpdatedAt,
		&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.StartDate = model.DateOf(startDate)
	c.EndDate = model.DateOf(endDate)
	c.Category = &cat
	return &c, nil
}

func (r *PostgresRepository) CreateContract(ctx context.Context, contract *model.Contract) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contracts
			(id, contract_number, supplier, description, category_id,
			 responsible, status, value, start_date, end_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, contract.ID, contract.ContractNumber, contract.Supplier, contract.Description,
		contract.CategoryID, contract.Responsible, contract.Status, contract.Value,
		contract.StartDate.Time, contract.EndDate.Time, contract.CreatedAt, contract.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+contractColumns+`
		FROM contracts c JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1
	`, id)
	contract, err := scanContract(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *PostgresRepository) GetContractByNumber(ctx context.Context, number string) (*model.Contract, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+contractColumns+`
		FROM contracts c JOIN categories cat ON cat.id = c.category_id
		WHERE c.contract_number = $1
	`, number)
	contract, err := scanContract(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *PostgresRepository) UpdateContract(ctx context.Context, contract *model.Contract) error {
	contract.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx, `
		UPDATE contracts SET
			contract_number = $2, supplier = $3, description = $4,
			category_id = $5, responsible = $6, status = $7, value = $8,
			start_date = $9, end_date = $10, updated_at = $11
		WHERE id = $1
	`, contract.ID, contract.ContractNumber, contract.Supplier, contract.Description,
		contract.CategoryID, contract.Responsible, contract.Status, contract.Value,
		contract.StartDate.Time, contract.EndDate.Time, contract.UpdatedAt)
	return err
}

func (r *PostgresRepository) DeleteContract(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) ListContracts(ctx context.Context, filters model.Filters, pagination model.Pagination) ([]model.Contract, int, error) {
	where, args := buildContractFilter(filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM contracts c` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := pagination.SortBy
	if !sortColumns[sortBy] {
		sortBy = "start_date"
	}
	dir := "ASC"
	if pagination.SortDir == model.SortDesc {
		dir = "DESC"
	}

	offset := (pagination.Page - 1) * pagination.PageSize
	args = append(args, pagination.PageSize, offset)
	query := fmt.Sprintf(`
		SELECT`+contractColumns+`
		FROM contracts c JOIN categories cat ON cat.id = c.category_id
		%s
		ORDER BY c.%s %s, c.id %s
		LIMIT $%d OFFSET $%d
	`, where, sortBy, dir, dir, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Contract{}
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *contract)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// buildContractFilter renders the sparse filter set as a WHERE clause with
// positional args. Unset fields produce no condition.
func buildContractFilter(f model.Filters) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.Supplier != "" {
		add(`c.supplier ILIKE '%%' || $%d || '%%'`, f.Supplier)
	}
	if f.Status != "" {
		add(`c.status = $%d`, f.Status)
	}
	if f.CategoryID != nil {
		add(`c.category_id = $%d`, *f.CategoryID)
	}
	if f.MinValue != nil {
		add(`c.value >= $%d`, *f.MinValue)
	}
	if f.MaxValue != nil {
		add(`c.value <= $%d`, *f.MaxValue)
	}
	if f.StartDateFrom != "" {
		add(`c.start_date >= $%d::date`, f.StartDateFrom)
	}
	if f.StartDateTo != "" {
		add(`c.start_date <= $%d::date`, f.StartDateTo)
	}
	if f.EndDateFrom != "" {
		add(`c.end_date >= $%d::date`, f.EndDateFrom)
	}
	if f.EndDateTo != "" {
		add(`c.end_date <= $%d::date`, f.EndDateTo)
	}
	if f.Q != "" {
		args = append(args, f.Q)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			`(c.contract_number ILIKE '%%' || $%d || '%%'
			OR c.supplier ILIKE '%%' || $%d || '%%'
			OR c.description ILIKE '%%' || $%d || '%%'
			OR c.responsible ILIKE '%%' || $%d || '%%')`, n, n, n, n))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM categories WHERE id = $1
	`, id)
	var cat model.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *PostgresRepository) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM categories WHERE name = $1
	`, name)
	var cat model.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING id, created_at
	`, category.Name, category.Description)
	return row.Scan(&category.ID, &category.CreatedAt)
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3 WHERE id = $1
	`, category.ID, category.Name, category.Description)
	return err
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) CountContractsInCategory(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM contracts WHERE category_id = $1
	`, id).Scan(&count)
	return count, err
}

func (r *PostgresRepository) AddHistory(ctx context.Context, entry *model.ChangeHistory) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO change_history (contract_id, changed_by, changes, changed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, entry.ContractID, entry.ChangedBy, changes, entry.ChangedAt)
	return row.Scan(&entry.ID)
}

func (r *PostgresRepository) ListHistory(ctx context.Context, contractID string) ([]model.ChangeHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contract_id, changed_by, changes, changed_at
		FROM change_history
		WHERE contract_id = $1
		ORDER BY changed_at DESC, id DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ChangeHistory{}
	for rows.Next() {
		var entry model.ChangeHistory
		var changes []byte
		if err := rows.Scan(&entry.ID, &entry.ContractID, &entry.ChangedBy, &changes, &entry.ChangedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(changes, &entry.Changes); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Stats(ctx context.Context, horizonDays int) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE end_date >= CURRENT_DATE
				AND end_date <= CURRENT_DATE + $1 * INTERVAL '1 day'),
			COALESCE(SUM(value), 0)
		FROM contracts
	`, horizonDays).Scan(&stats.Total, &stats.Active, &stats.ExpiringSoon, &stats.TotalValue)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
