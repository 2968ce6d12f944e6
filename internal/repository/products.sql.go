package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, name, image, price, category, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Image,
		&i.Price,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryProducts(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
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

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (name, image, price, category)
VALUES ($1, $2, $3, $4)
RETURNING ` + productColumns

type CreateProductParams struct {
	Name     string         `json:"name"`
	Image    string         `json:"image"`
	Price    pgtype.Numeric `json:"price"`
	Category string         `json:"category"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Image,
		arg.Price,
		arg.Category,
	)
	return scanProduct(row)
}

const findProductByID = `-- name: FindProductByID :one
SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`

func (q *Queries) FindProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, findProductByID, id))
}

const findProducts = `-- name: FindProducts :many
SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id`

func (q *Queries) FindProducts(ctx context.Context) ([]Product, error) {
	return q.queryProducts(ctx, findProducts)
}

const findLikedProductsByUserID = `-- name: FindLikedProductsByUserID :many
SELECT p.id, p.name, p.image, p.price, p.category, p.created_at, p.updated_at
FROM products p
JOIN product_likes pl ON pl.product_id = p.id
WHERE pl.user_id = $1
ORDER BY pl.created_at DESC, p.id`

func (q *Queries) FindLikedProductsByUserID(ctx context.Context, userID uuid.UUID) ([]Product, error) {
	return q.queryProducts(ctx, findLikedProductsByUserID, userID)
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET name = COALESCE($2, name),
    image = COALESCE($3, image),
    price = COALESCE($4, price),
    category = COALESCE($5, category),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID       uuid.UUID      `json:"id"`
	Name     pgtype.Text    `json:"name"`
	Image    pgtype.Text    `json:"image"`
	Price    pgtype.Numeric `json:"price"`
	Category pgtype.Text    `json:"category"`
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.Image,
		arg.Price,
		arg.Category,
	)
	return scanProduct(row)
}

const deleteProductByID = `-- name: DeleteProductByID :execrows
DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProductByID(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProductByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type ProductLikeParams struct {
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
}

const insertProductLike = `-- name: InsertProductLike :execrows
INSERT INTO product_likes (product_id, user_id) VALUES ($1, $2)
ON CONFLICT (product_id, user_id) DO NOTHING`

func (q *Queries) InsertProductLike(ctx context.Context, arg ProductLikeParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertProductLike, arg.ProductID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteProductLike = `-- name: DeleteProductLike :execrows
DELETE FROM product_likes WHERE product_id = $1 AND user_id = $2`

func (q *Queries) DeleteProductLike(ctx context.Context, arg ProductLikeParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProductLike, arg.ProductID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const isProductLikedByUser = `-- name: IsProductLikedByUser :one
SELECT EXISTS (SELECT 1 FROM product_likes WHERE product_id = $1 AND user_id = $2)`

func (q *Queries) IsProductLikedByUser(ctx context.Context, arg ProductLikeParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, isProductLikedByUser, arg.ProductID, arg.UserID).Scan(&exists)
	return exists, err
}

const countProductLikes = `-- name: CountProductLikes :one
SELECT count(*) FROM product_likes WHERE product_id = $1`

func (q *Queries) CountProductLikes(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProductLikes, productID).Scan(&count)
	return count, err
}
