package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, created_at, updated_at, name, email, hashed_password`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.Name,
		&i.Email,
		&i.HashedPassword,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, created_at, updated_at, name, email, hashed_password)
VALUES (gen_random_uuid(), NOW(), NOW(), $1, lower($2), $3)
RETURNING ` + userColumns

type CreateUserParams struct {
	Name           string
	Email          string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Name, arg.Email, arg.HashedPassword)
	return wrapNoRows(scanUser(row))
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	return wrapNoRows(scanUser(row))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	return wrapNoRows(scanUser(row))
}

const getUserByName = `-- name: GetUserByName :one
SELECT ` + userColumns + ` FROM users WHERE name = $1`

func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByName, name)
	return wrapNoRows(scanUser(row))
}

const userExists = `-- name: UserExists :one
SELECT EXISTS (
    SELECT 1 FROM users
    WHERE (email = lower($1) OR name = $2) AND id <> $3
)`

type UserExistsParams struct {
	Email string
	Name  string
	// ExcludeID skips the caller's own row on profile updates; uuid.Nil matches nothing.
	ExcludeID uuid.UUID
}

func (q *Queries) UserExists(ctx context.Context, arg UserExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, userExists, arg.Email, arg.Name, arg.ExcludeID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users
SET name = $2, email = lower($3), updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserProfileParams struct {
	ID    uuid.UUID
	Name  string
	Email string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUserProfile, arg.ID, arg.Name, arg.Email)
	return wrapNoRows(scanUser(row))
}

const updateUserPassword = `-- name: UpdateUserPassword :exec
UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`

type UpdateUserPasswordParams struct {
	ID             uuid.UUID
	HashedPassword string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.ID, arg.HashedPassword)
	return err
}

const getUserCount = `-- name: GetUserCount :one
SELECT COUNT(*) FROM users`

func (q *Queries) GetUserCount(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserCount)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteUsers = `-- name: DeleteUsers :exec
DELETE FROM users`

func (q *Queries) DeleteUsers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteUsers)
	return err
}
