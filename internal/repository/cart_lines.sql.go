package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartLineColumns = `id, user_id, product_id, quantity, option_name, option_extra_price, return_date, created_at, updated_at`

func scanCartLine(row interface{ Scan(...any) error }) (CartLine, error) {
	var i CartLine
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ProductID,
		&i.Quantity,
		&i.OptionName,
		&i.OptionExtraPrice,
		&i.ReturnDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// FindCartLinesByUserIDRow is a cart line joined with the live product it references.
// The product columns are NULL when the product was deleted.
type FindCartLinesByUserIDRow struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	Quantity         int32              `json:"quantity"`
	OptionName       pgtype.Text        `json:"option_name"`
	OptionExtraPrice pgtype.Numeric     `json:"option_extra_price"`
	ReturnDate       pgtype.Date        `json:"return_date"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
	ProductName      pgtype.Text        `json:"product_name"`
	ProductImage     pgtype.Text        `json:"product_image"`
	ProductPrice     pgtype.Numeric     `json:"product_price"`
}

const findCartLinesByUserID = `-- name: FindCartLinesByUserID :many
SELECT cl.id, cl.user_id, cl.product_id, cl.quantity, cl.option_name, cl.option_extra_price,
       cl.return_date, cl.created_at, cl.updated_at,
       p.name AS product_name, p.image AS product_image, p.price AS product_price
FROM cart_lines cl
LEFT JOIN products p ON p.id = cl.product_id
WHERE cl.user_id = $1
ORDER BY cl.created_at, cl.id`

func (q *Queries) FindCartLinesByUserID(ctx context.Context, userID uuid.UUID) ([]FindCartLinesByUserIDRow, error) {
	return q.queryCartLinesWithProduct(ctx, findCartLinesByUserID, userID)
}

const findCartLinesByUserIDForUpdate = `-- name: FindCartLinesByUserIDForUpdate :many
SELECT cl.id, cl.user_id, cl.product_id, cl.quantity, cl.option_name, cl.option_extra_price,
       cl.return_date, cl.created_at, cl.updated_at,
       p.name AS product_name, p.image AS product_image, p.price AS product_price
FROM cart_lines cl
LEFT JOIN products p ON p.id = cl.product_id
WHERE cl.user_id = $1
ORDER BY cl.created_at, cl.id
FOR UPDATE OF cl`

func (q *Queries) FindCartLinesByUserIDForUpdate(ctx context.Context, userID uuid.UUID) ([]FindCartLinesByUserIDRow, error) {
	return q.queryCartLinesWithProduct(ctx, findCartLinesByUserIDForUpdate, userID)
}

func (q *Queries) queryCartLinesWithProduct(ctx context.Context, query string, userID uuid.UUID) ([]FindCartLinesByUserIDRow, error) {
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindCartLinesByUserIDRow{}
	for rows.Next() {
		var i FindCartLinesByUserIDRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ProductID,
			&i.Quantity,
			&i.OptionName,
			&i.OptionExtraPrice,
			&i.ReturnDate,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
			&i.ProductImage,
			&i.ProductPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CartLineKeyParams struct {
	UserID     uuid.UUID `json:"user_id"`
	ProductID  uuid.UUID `json:"product_id"`
	OptionName string    `json:"option_name"`
}

const findCartLineByKeyForUpdate = `-- name: FindCartLineByKeyForUpdate :one
SELECT ` + cartLineColumns + `
FROM cart_lines
WHERE user_id = $1 AND product_id = $2 AND COALESCE(option_name, '') = $3
LIMIT 1
FOR UPDATE`

func (q *Queries) FindCartLineByKeyForUpdate(ctx context.Context, arg CartLineKeyParams) (CartLine, error) {
	row := q.db.QueryRow(ctx, findCartLineByKeyForUpdate, arg.UserID, arg.ProductID, arg.OptionName)
	return scanCartLine(row)
}

const createCartLine = `-- name: CreateCartLine :one
INSERT INTO cart_lines (user_id, product_id, quantity, option_name, option_extra_price, return_date)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, product_id, (COALESCE(option_name, ''))) DO NOTHING
RETURNING ` + cartLineColumns

type CreateCartLineParams struct {
	UserID           uuid.UUID      `json:"user_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	Quantity         int32          `json:"quantity"`
	OptionName       pgtype.Text    `json:"option_name"`
	OptionExtraPrice pgtype.Numeric `json:"option_extra_price"`
	ReturnDate       pgtype.Date    `json:"return_date"`
}

func (q *Queries) CreateCartLine(ctx context.Context, arg CreateCartLineParams) (CartLine, error) {
	row := q.db.QueryRow(ctx, createCartLine,
		arg.UserID,
		arg.ProductID,
		arg.Quantity,
		arg.OptionName,
		arg.OptionExtraPrice,
		arg.ReturnDate,
	)
	return scanCartLine(row)
}

const updateCartLine = `-- name: UpdateCartLine :one
UPDATE cart_lines
SET quantity = $2,
    option_name = $3,
    option_extra_price = $4,
    return_date = $5,
    updated_at = now()
WHERE id = $1
RETURNING ` + cartLineColumns

type UpdateCartLineParams struct {
	ID               uuid.UUID      `json:"id"`
	Quantity         int32          `json:"quantity"`
	OptionName       pgtype.Text    `json:"option_name"`
	OptionExtraPrice pgtype.Numeric `json:"option_extra_price"`
	ReturnDate       pgtype.Date    `json:"return_date"`
}

func (q *Queries) UpdateCartLine(ctx context.Context, arg UpdateCartLineParams) (CartLine, error) {
	row := q.db.QueryRow(ctx, updateCartLine,
		arg.ID,
		arg.Quantity,
		arg.OptionName,
		arg.OptionExtraPrice,
		arg.ReturnDate,
	)
	return scanCartLine(row)
}

const deleteCartLineByID = `-- name: DeleteCartLineByID :exec
DELETE FROM cart_lines WHERE id = $1`

func (q *Queries) DeleteCartLineByID(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartLineByID, id)
	return err
}

const deleteCartLineByKey = `-- name: DeleteCartLineByKey :execrows
DELETE FROM cart_lines
WHERE user_id = $1 AND product_id = $2 AND COALESCE(option_name, '') = $3`

func (q *Queries) DeleteCartLineByKey(ctx context.Context, arg CartLineKeyParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartLineByKey, arg.UserID, arg.ProductID, arg.OptionName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartLinesByUserID = `-- name: DeleteCartLinesByUserID :execrows
DELETE FROM cart_lines WHERE user_id = $1`

func (q *Queries) DeleteCartLinesByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartLinesByUserID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
