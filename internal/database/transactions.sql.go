package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.created_at, t.updated_at, t.user_id, t.category_id, t.amount, t.description, t.transaction_date, t.type`

func scanTransaction(row interface{ Scan(...any) error }, extra ...any) (Transaction, error) {
	var i Transaction
	dest := []any{
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.UserID,
		&i.CategoryID,
		&i.Amount,
		&i.Description,
		&i.TransactionDate,
		&i.Type,
	}
	err := row.Scan(append(dest, extra...)...)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions AS t (id, created_at, updated_at, user_id, category_id, amount, description, transaction_date, type)
VALUES (gen_random_uuid(), NOW(), NOW(), $1, $2, $3, $4, $5, $6)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	UserID          uuid.UUID
	CategoryID      uuid.UUID
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	Type            string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.CategoryID,
		arg.Amount,
		arg.Description,
		arg.TransactionDate,
		arg.Type,
	)
	return wrapNoRows(scanTransaction(row))
}

const getTransactionByID = `-- name: GetTransactionByID :one
SELECT ` + transactionColumns + `, c.name
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.id = $1 AND t.user_id = $2`

type GetTransactionByIDParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetTransactionByID(ctx context.Context, arg GetTransactionByIDParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransactionByID, arg.ID, arg.UserID)
	var i TransactionRow
	var err error
	i.Transaction, err = scanTransaction(row, &i.CategoryName)
	return wrapNoRows(i, err)
}

const getTransactions = `-- name: GetTransactions :many
SELECT ` + transactionColumns + `, c.name
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.user_id = $1
  AND ($2::date IS NULL OR t.transaction_date >= $2::date)
  AND ($3::date IS NULL OR t.transaction_date <= $3::date)
  AND ($4::uuid IS NULL OR t.category_id = $4::uuid)
  AND ($5::text = '' OR t.type = $5::text)
ORDER BY t.transaction_date DESC, t.created_at DESC
LIMIT NULLIF($6::int, 0)`

type GetTransactionsParams struct {
	UserID uuid.UUID
	// StartDate and EndDate are inclusive bounds on the transaction date.
	StartDate  sql.NullTime
	EndDate    sql.NullTime
	CategoryID uuid.NullUUID
	Type       string
	// Limit of zero returns every matching row.
	Limit int32
}

func (q *Queries) GetTransactions(ctx context.Context, arg GetTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, getTransactions,
		arg.UserID,
		arg.StartDate,
		arg.EndDate,
		arg.CategoryID,
		arg.Type,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionRow{}
	for rows.Next() {
		var i TransactionRow
		if i.Transaction, err = scanTransaction(rows, &i.CategoryName); err != nil {
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

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions AS t
SET category_id = $3,
    amount = $4,
    description = $5,
    transaction_date = $6,
    type = $7,
    updated_at = NOW()
WHERE t.id = $1 AND t.user_id = $2
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	CategoryID      uuid.UUID
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	Type            string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.ID,
		arg.UserID,
		arg.CategoryID,
		arg.Amount,
		arg.Description,
		arg.TransactionDate,
		arg.Type,
	)
	return wrapNoRows(scanTransaction(row))
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = $1 AND user_id = $2`

func (q *Queries) DeleteTransaction(ctx context.Context, arg GetTransactionByIDParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumCategorySpending = `-- name: SumCategorySpending :one
SELECT COALESCE(SUM(amount), 0)::numeric
FROM transactions
WHERE user_id = $1
  AND category_id = $2
  AND transaction_date >= $3::date
  AND transaction_date <= $4::date`

type SumCategorySpendingParams struct {
	UserID     uuid.UUID
	CategoryID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}

func (q *Queries) SumCategorySpending(ctx context.Context, arg SumCategorySpendingParams) (decimal.Decimal, error) {
	row := q.db.QueryRowContext(ctx, sumCategorySpending, arg.UserID, arg.CategoryID, arg.StartDate, arg.EndDate)
	var total decimal.Decimal
	err := row.Scan(&total)
	return total, err
}
