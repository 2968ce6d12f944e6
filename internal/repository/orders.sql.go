package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, order_number, customer_name, customer_phone, delivery_address, note,
payment_method, total_amount, status, delivery_date, calculated_return_date, cancelled_by,
cancellation_reason, cancelled_at, created_at, updated_at`

func orderFields(i *Order) []any {
	return []any{
		&i.ID,
		&i.UserID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.DeliveryAddress,
		&i.Note,
		&i.PaymentMethod,
		&i.TotalAmount,
		&i.Status,
		&i.DeliveryDate,
		&i.CalculatedReturnDate,
		&i.CancelledBy,
		&i.CancellationReason,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(orderFields(&i)...)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    user_id, order_number, customer_name, customer_phone, delivery_address, note,
    payment_method, total_amount, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	UserID          uuid.UUID      `json:"user_id"`
	OrderNumber     string         `json:"order_number"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	DeliveryAddress string         `json:"delivery_address"`
	Note            string         `json:"note"`
	PaymentMethod   string         `json:"payment_method"`
	TotalAmount     pgtype.Numeric `json:"total_amount"`
	Status          string         `json:"status"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.OrderNumber,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.DeliveryAddress,
		arg.Note,
		arg.PaymentMethod,
		arg.TotalAmount,
		arg.Status,
	)
	return scanOrder(row)
}

type CreateOrderItemsParams struct {
	OrderID          uuid.UUID      `json:"order_id"`
	Position         int32          `json:"position"`
	ProductID        uuid.UUID      `json:"product_id"`
	ProductName      string         `json:"product_name"`
	ProductImage     string         `json:"product_image"`
	BasePrice        pgtype.Numeric `json:"base_price"`
	Quantity         int32          `json:"quantity"`
	OptionName       pgtype.Text    `json:"option_name"`
	OptionExtraPrice pgtype.Numeric `json:"option_extra_price"`
	ReturnDate       pgtype.Date    `json:"return_date"`
	DailyRentalRate  pgtype.Numeric `json:"daily_rental_rate"`
	RentalDays       int32          `json:"rental_days"`
	RentalExtra      pgtype.Numeric `json:"rental_extra"`
	PerUnitTotal     pgtype.Numeric `json:"per_unit_total"`
	LineTotal        pgtype.Numeric `json:"line_total"`
}

type iteratorForCreateOrderItems struct {
	rows                 []CreateOrderItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForCreateOrderItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCreateOrderItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].OrderID,
		r.rows[0].Position,
		r.rows[0].ProductID,
		r.rows[0].ProductName,
		r.rows[0].ProductImage,
		r.rows[0].BasePrice,
		r.rows[0].Quantity,
		r.rows[0].OptionName,
		r.rows[0].OptionExtraPrice,
		r.rows[0].ReturnDate,
		r.rows[0].DailyRentalRate,
		r.rows[0].RentalDays,
		r.rows[0].RentalExtra,
		r.rows[0].PerUnitTotal,
		r.rows[0].LineTotal,
	}, nil
}

func (r iteratorForCreateOrderItems) Err() error {
	return nil
}

// name: CreateOrderItems :copyfrom
func (q *Queries) CreateOrderItems(ctx context.Context, arg []CreateOrderItemsParams) (int64, error) {
	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{
			"order_id", "position", "product_id", "product_name", "product_image", "base_price",
			"quantity", "option_name", "option_extra_price", "return_date", "daily_rental_rate",
			"rental_days", "rental_extra", "per_unit_total", "line_total",
		},
		&iteratorForCreateOrderItems{rows: arg},
	)
}

const findOrderByID = `-- name: FindOrderByID :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 LIMIT 1`

func (q *Queries) FindOrderByID(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, findOrderByID, id))
}

const findOrderByIDForUpdate = `-- name: FindOrderByIDForUpdate :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 LIMIT 1 FOR UPDATE`

func (q *Queries) FindOrderByIDForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, findOrderByIDForUpdate, id))
}

const findOrdersByUserID = `-- name: FindOrdersByUserID :many
SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`

func (q *Queries) FindOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, findOrdersByUserID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
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

type FindOrdersRow struct {
	Order
	Username    pgtype.Text `json:"username"`
	Email       pgtype.Text `json:"email"`
	PhoneNumber pgtype.Text `json:"phone_number"`
}

const findOrders = `-- name: FindOrders :many
SELECT o.id, o.user_id, o.order_number, o.customer_name, o.customer_phone, o.delivery_address,
       o.note, o.payment_method, o.total_amount, o.status, o.delivery_date,
       o.calculated_return_date, o.cancelled_by, o.cancellation_reason, o.cancelled_at,
       o.created_at, o.updated_at,
       u.username, u.email, u.phone_number
FROM orders o
LEFT JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC, o.id`

func (q *Queries) FindOrders(ctx context.Context) ([]FindOrdersRow, error) {
	rows, err := q.db.Query(ctx, findOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindOrdersRow{}
	for rows.Next() {
		var i FindOrdersRow
		fields := append(orderFields(&i.Order), &i.Username, &i.Email, &i.PhoneNumber)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const orderItemColumns = `id, order_id, position, product_id, product_name, product_image, base_price,
quantity, option_name, option_extra_price, return_date, daily_rental_rate, rental_days,
rental_extra, per_unit_total, line_total, calculated_return_date`

const findOrderItemsByOrderIDs = `-- name: FindOrderItemsByOrderIDs :many
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position`

func (q *Queries) FindOrderItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, findOrderItemsByOrderIDs, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.ProductID,
			&i.ProductName,
			&i.ProductImage,
			&i.BasePrice,
			&i.Quantity,
			&i.OptionName,
			&i.OptionExtraPrice,
			&i.ReturnDate,
			&i.DailyRentalRate,
			&i.RentalDays,
			&i.RentalExtra,
			&i.PerUnitTotal,
			&i.LineTotal,
			&i.CalculatedReturnDate,
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

const updateOrderItemCalculatedReturnDate = `-- name: UpdateOrderItemCalculatedReturnDate :exec
UPDATE order_items SET calculated_return_date = $2 WHERE id = $1`

type UpdateOrderItemCalculatedReturnDateParams struct {
	ID                   uuid.UUID          `json:"id"`
	CalculatedReturnDate pgtype.Timestamptz `json:"calculated_return_date"`
}

func (q *Queries) UpdateOrderItemCalculatedReturnDate(ctx context.Context, arg UpdateOrderItemCalculatedReturnDateParams) error {
	_, err := q.db.Exec(ctx, updateOrderItemCalculatedReturnDate, arg.ID, arg.CalculatedReturnDate)
	return err
}

const confirmOrder = `-- name: ConfirmOrder :one
UPDATE orders
SET status = $2, delivery_date = $3, calculated_return_date = $4, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type ConfirmOrderParams struct {
	ID                   uuid.UUID          `json:"id"`
	Status               string             `json:"status"`
	DeliveryDate         pgtype.Timestamptz `json:"delivery_date"`
	CalculatedReturnDate pgtype.Timestamptz `json:"calculated_return_date"`
}

func (q *Queries) ConfirmOrder(ctx context.Context, arg ConfirmOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, confirmOrder, arg.ID, arg.Status, arg.DeliveryDate, arg.CalculatedReturnDate)
	return scanOrder(row)
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = $2, cancelled_by = $3, cancellation_reason = $4, cancelled_at = $5, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID                 uuid.UUID          `json:"id"`
	Status             string             `json:"status"`
	CancelledBy        pgtype.Text        `json:"cancelled_by"`
	CancellationReason pgtype.Text        `json:"cancellation_reason"`
	CancelledAt        pgtype.Timestamptz `json:"cancelled_at"`
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, cancelOrder,
		arg.ID,
		arg.Status,
		arg.CancelledBy,
		arg.CancellationReason,
		arg.CancelledAt,
	)
	return scanOrder(row)
}
