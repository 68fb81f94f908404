package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const categoryColumns = `id, created_at, updated_at, user_id, name, type`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.UserID,
		&i.Name,
		&i.Type,
	)
	return i, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (id, created_at, updated_at, user_id, name, type)
VALUES (gen_random_uuid(), NOW(), NOW(), $1, $2, $3)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	UserID uuid.UUID
	Name   string
	Type   string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.UserID, arg.Name, arg.Type)
	return wrapNoRows(scanCategory(row))
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT ` + categoryColumns + ` FROM categories
WHERE id = $1 AND user_id = $2`

type GetCategoryByIDParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetCategoryByID(ctx context.Context, arg GetCategoryByIDParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategoryByID, arg.ID, arg.UserID)
	return wrapNoRows(scanCategory(row))
}

const getCategoryForUpdate = `-- name: GetCategoryForUpdate :one
SELECT ` + categoryColumns + ` FROM categories
WHERE id = $1 AND user_id = $2
FOR UPDATE`

// GetCategoryForUpdate locks the row until the surrounding transaction ends.
// Inserts of transactions referencing the category block on the lock.
func (q *Queries) GetCategoryForUpdate(ctx context.Context, arg GetCategoryByIDParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategoryForUpdate, arg.ID, arg.UserID)
	return wrapNoRows(scanCategory(row))
}

const getCategoriesByName = `-- name: GetCategoriesByName :many
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = $1 AND name = $2
ORDER BY type ASC`

type GetCategoriesByNameParams struct {
	UserID uuid.UUID
	Name   string
}

func (q *Queries) GetCategoriesByName(ctx context.Context, arg GetCategoriesByNameParams) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, getCategoriesByName, arg.UserID, arg.Name)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

const getCategories = `-- name: GetCategories :many
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = $1
  AND ($2::text = '' OR type = $2::text)
ORDER BY name ASC, type ASC`

type GetCategoriesParams struct {
	UserID uuid.UUID
	// Type filters by category type when non-empty.
	Type string
}

func (q *Queries) GetCategories(ctx context.Context, arg GetCategoriesParams) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, getCategories, arg.UserID, arg.Type)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories
SET name = $3, type = $4, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Type   string
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory, arg.ID, arg.UserID, arg.Name, arg.Type)
	return wrapNoRows(scanCategory(row))
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = $1 AND user_id = $2`

func (q *Queries) DeleteCategory(ctx context.Context, arg GetCategoryByIDParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countCategoryTransactions = `-- name: CountCategoryTransactions :one
SELECT COUNT(*) FROM transactions WHERE category_id = $1 AND user_id = $2`

func (q *Queries) CountCategoryTransactions(ctx context.Context, arg GetCategoryByIDParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategoryTransactions, arg.ID, arg.UserID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func collectCategories(rows *sql.Rows) ([]Category, error) {
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		i, err := scanCategory(rows)
		if err != nil {
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
