package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartLine struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	Quantity         int32              `json:"quantity"`
	OptionName       pgtype.Text        `json:"option_name"`
	OptionExtraPrice pgtype.Numeric     `json:"option_extra_price"`
	ReturnDate       pgtype.Date        `json:"return_date"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               uuid.UUID          `json:"user_id"`
	OrderNumber          string             `json:"order_number"`
	CustomerName         string             `json:"customer_name"`
	CustomerPhone        string             `json:"customer_phone"`
	DeliveryAddress      string             `json:"delivery_address"`
	Note                 string             `json:"note"`
	PaymentMethod        string             `json:"payment_method"`
	TotalAmount          pgtype.Numeric     `json:"total_amount"`
	Status               string             `json:"status"`
	DeliveryDate         pgtype.Timestamptz `json:"delivery_date"`
	CalculatedReturnDate pgtype.Timestamptz `json:"calculated_return_date"`
	CancelledBy          pgtype.Text        `json:"cancelled_by"`
	CancellationReason   pgtype.Text        `json:"cancellation_reason"`
	CancelledAt          pgtype.Timestamptz `json:"cancelled_at"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

type OrderItem struct {
	ID                   uuid.UUID          `json:"id"`
	OrderID              uuid.UUID          `json:"order_id"`
	Position             int32              `json:"position"`
	ProductID            uuid.UUID          `json:"product_id"`
	ProductName          string             `json:"product_name"`
	ProductImage         string             `json:"product_image"`
	BasePrice            pgtype.Numeric     `json:"base_price"`
	Quantity             int32              `json:"quantity"`
	OptionName           pgtype.Text        `json:"option_name"`
	OptionExtraPrice     pgtype.Numeric     `json:"option_extra_price"`
	ReturnDate           pgtype.Date        `json:"return_date"`
	DailyRentalRate      pgtype.Numeric     `json:"daily_rental_rate"`
	RentalDays           int32              `json:"rental_days"`
	RentalExtra          pgtype.Numeric     `json:"rental_extra"`
	PerUnitTotal         pgtype.Numeric     `json:"per_unit_total"`
	LineTotal            pgtype.Numeric     `json:"line_total"`
	CalculatedReturnDate pgtype.Timestamptz `json:"calculated_return_date"`
}

type Product struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Image     string             `json:"image"`
	Price     pgtype.Numeric     `json:"price"`
	Category  string             `json:"category"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type ProductLike struct {
	ProductID uuid.UUID          `json:"product_id"`
	UserID    uuid.UUID          `json:"user_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID          uuid.UUID          `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Role        string             `json:"role"`
	PhoneNumber string             `json:"phone_number"`
	Blocked     bool               `json:"blocked"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}
