package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const budgetColumns = `b.id, b.created_at, b.updated_at, b.user_id, b.category_id, b.amount, b.period_year, b.period_month`

func scanBudget(row interface{ Scan(...any) error }, extra ...any) (Budget, error) {
	var i Budget
	dest := []any{
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.UserID,
		&i.CategoryID,
		&i.Amount,
		&i.PeriodYear,
		&i.PeriodMonth,
	}
	err := row.Scan(append(dest, extra...)...)
	return i, err
}

const upsertBudget = `-- name: UpsertBudget :one
INSERT INTO budgets AS b (id, created_at, updated_at, user_id, category_id, amount, period_year, period_month)
VALUES (gen_random_uuid(), NOW(), NOW(), $1, $2, $3, $4, $5)
ON CONFLICT (user_id, category_id, period_year, period_month)
DO UPDATE SET amount = b.amount + EXCLUDED.amount, updated_at = NOW()
RETURNING ` + budgetColumns + `, (b.xmax = 0) AS inserted`

type UpsertBudgetParams struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	PeriodYear  int32
	PeriodMonth int32
}

type UpsertBudgetRow struct {
	Budget
	// Inserted is false when the amount was added to an existing budget.
	Inserted bool
}

// UpsertBudget creates the budget for a category and period, or adds the
// amount to the one that already exists, in a single statement.
func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (UpsertBudgetRow, error) {
	row := q.db.QueryRowContext(ctx, upsertBudget,
		arg.UserID,
		arg.CategoryID,
		arg.Amount,
		arg.PeriodYear,
		arg.PeriodMonth,
	)
	var i UpsertBudgetRow
	var err error
	i.Budget, err = scanBudget(row, &i.Inserted)
	return wrapNoRows(i, err)
}

const getBudgetByID = `-- name: GetBudgetByID :one
SELECT ` + budgetColumns + `, c.name, c.type
FROM budgets b
JOIN categories c ON c.id = b.category_id
WHERE b.id = $1 AND b.user_id = $2`

type GetBudgetByIDParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetBudgetByID(ctx context.Context, arg GetBudgetByIDParams) (BudgetRow, error) {
	row := q.db.QueryRowContext(ctx, getBudgetByID, arg.ID, arg.UserID)
	var i BudgetRow
	var err error
	i.Budget, err = scanBudget(row, &i.CategoryName, &i.CategoryType)
	return wrapNoRows(i, err)
}

const getBudgetForCategoryPeriod = `-- name: GetBudgetForCategoryPeriod :one
SELECT ` + budgetColumns + `, c.name, c.type
FROM budgets b
JOIN categories c ON c.id = b.category_id
WHERE b.user_id = $1 AND b.category_id = $2 AND b.period_year = $3 AND b.period_month = $4`

type GetBudgetForCategoryPeriodParams struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	PeriodYear  int32
	PeriodMonth int32
}

func (q *Queries) GetBudgetForCategoryPeriod(ctx context.Context, arg GetBudgetForCategoryPeriodParams) (BudgetRow, error) {
	row := q.db.QueryRowContext(ctx, getBudgetForCategoryPeriod,
		arg.UserID,
		arg.CategoryID,
		arg.PeriodYear,
		arg.PeriodMonth,
	)
	var i BudgetRow
	var err error
	i.Budget, err = scanBudget(row, &i.CategoryName, &i.CategoryType)
	return wrapNoRows(i, err)
}

const getBudgets = `-- name: GetBudgets :many
SELECT ` + budgetColumns + `, c.name, c.type
FROM budgets b
JOIN categories c ON c.id = b.category_id
WHERE b.user_id = $1
  AND ($2::int IS NULL OR b.period_year = $2::int)
  AND ($3::int IS NULL OR b.period_month = $3::int)
ORDER BY b.period_year DESC, b.period_month DESC, c.name ASC`

type GetBudgetsParams struct {
	UserID      uuid.UUID
	PeriodYear  sql.NullInt32
	PeriodMonth sql.NullInt32
}

func (q *Queries) GetBudgets(ctx context.Context, arg GetBudgetsParams) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, getBudgets, arg.UserID, arg.PeriodYear, arg.PeriodMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BudgetRow{}
	for rows.Next() {
		var i BudgetRow
		if i.Budget, err = scanBudget(rows, &i.CategoryName, &i.CategoryType); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateBudget = `-- name: UpdateBudget :one
UPDATE budgets AS b
SET amount = $3, period_year = $4, period_month = $5, updated_at = NOW()
WHERE b.id = $1 AND b.user_id = $2
RETURNING ` + budgetColumns

type UpdateBudgetParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	PeriodYear  int32
	PeriodMonth int32
}

func (q *Queries) UpdateBudget(ctx context.Context, arg UpdateBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, updateBudget,
		arg.ID,
		arg.UserID,
		arg.Amount,
		arg.PeriodYear,
		arg.PeriodMonth,
	)
	return wrapNoRows(scanBudget(row))
}

const deleteBudget = `-- name: DeleteBudget :execrows
DELETE FROM budgets WHERE id = $1 AND user_id = $2`

func (q *Queries) DeleteBudget(ctx context.Context, arg GetBudgetByIDParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudget, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
