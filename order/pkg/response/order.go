package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/gearshare/cart/pkg/response"
)

type OrderItem struct {
	ReturnDate           *time.Time                   `json:"returnDate"`
	CalculatedReturnDate *time.Time                   `json:"calculatedReturnDate"`
	SelectedOption       *cartResponse.SelectedOption `json:"selectedOption"`
	ProductID            string                       `json:"productId"`
	ProductName          string                       `json:"productName"`
	ProductImage         string                       `json:"productImage"`
	BasePrice            decimal.Decimal              `json:"basePrice"`
	DailyRentalRate      decimal.Decimal              `json:"dailyRentalRate"`
	RentalExtra          decimal.Decimal              `json:"rentalExtra"`
	PerUnitTotal         decimal.Decimal              `json:"perUnitTotal"`
	LineTotal            decimal.Decimal              `json:"lineTotal"`
	RentalDays           int                          `json:"rentalDays"`
	Quantity             int32                        `json:"quantity"`
	ID                   uuid.UUID                    `json:"id"`
}

// Customer is the owning user as shown to admins.
type Customer struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type Order struct {
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	DeliveryDate         *time.Time      `json:"deliveryDate"`
	CalculatedReturnDate *time.Time      `json:"calculatedReturnDate"`
	CancelledAt          *time.Time      `json:"cancelledAt,omitempty"`
	User                 *Customer       `json:"user,omitempty"`
	OrderNumber          string          `json:"orderNumber"`
	CustomerName         string          `json:"customerName"`
	CustomerPhone        string          `json:"customerPhone"`
	DeliveryAddress      string          `json:"deliveryAddress"`
	Note                 string          `json:"note"`
	PaymentMethod        string          `json:"paymentMethod"`
	Status               string          `json:"status"`
	CancelledBy          string          `json:"cancelledBy,omitempty"`
	CancellationReason   string          `json:"cancellationReason,omitempty"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Items                []OrderItem     `json:"items"`
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"userId"`
}

type Checkout struct {
	Order Order             `json:"order"`
	Cart  cartResponse.Cart `json:"cart"`
}

type Confirmation struct {
	DeliveryDate         time.Time  `json:"deliveryDate"`
	CalculatedReturnDate *time.Time `json:"calculatedReturnDate"`
	OrderNumber          string     `json:"orderNumber"`
	OrderID              uuid.UUID  `json:"orderId"`
}

// Event is published on every order transition.
type Event struct {
	OccurredAt  time.Time `json:"occurredAt"`
	Type        string    `json:"type"`
	OrderNumber string    `json:"orderNumber"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to"`
	OrderID     uuid.UUID `json:"orderId"`
	UserID      uuid.UUID `json:"userId"`
	ActorID     uuid.UUID `json:"actorId"`
}
