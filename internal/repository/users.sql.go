package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, username, email, password, role, phone_number, blocked, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.Password,
		&i.Role,
		&i.PhoneNumber,
		&i.Blocked,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, email, password, role, phone_number)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.Password,
		arg.Role,
		arg.PhoneNumber,
	)
	return scanUser(row)
}

const findUserByEmail = `-- name: FindUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`

func (q *Queries) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, findUserByEmail, email))
}

const findUserByID = `-- name: FindUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`

func (q *Queries) FindUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, findUserByID, id))
}

const findUsers = `-- name: FindUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id`

func (q *Queries) FindUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, findUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUser = `-- name: UpdateUser :one
UPDATE users
SET username = COALESCE($2, username),
    phone_number = COALESCE($3, phone_number),
    password = COALESCE($4, password),
    blocked = COALESCE($5, blocked),
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID          uuid.UUID   `json:"id"`
	Username    pgtype.Text `json:"username"`
	PhoneNumber pgtype.Text `json:"phone_number"`
	Password    pgtype.Text `json:"password"`
	Blocked     pgtype.Bool `json:"blocked"`
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser,
		arg.ID,
		arg.Username,
		arg.PhoneNumber,
		arg.Password,
		arg.Blocked,
	)
	return scanUser(row)
}

const updateUserRoleByEmail = `-- name: UpdateUserRoleByEmail :one
UPDATE users SET role = $2, updated_at = now()
WHERE lower(email) = lower($1)
RETURNING ` + userColumns

type UpdateUserRoleByEmailParams struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (q *Queries) UpdateUserRoleByEmail(ctx context.Context, arg UpdateUserRoleByEmailParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUserRoleByEmail, arg.Email, arg.Role))
}

const deleteUserByID = `-- name: DeleteUserByID :execrows
DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUserByID(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteUserByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
