package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SelectedOption struct {
	Name       string          `json:"name"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
}

// LineItem is a cart line priced against the product's current price.
type LineItem struct {
	ReturnDate      *time.Time      `json:"returnDate"`
	SelectedOption  *SelectedOption `json:"selectedOption"`
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductImage    string          `json:"productImage"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	DailyRentalRate decimal.Decimal `json:"dailyRentalRate"`
	RentalExtra     decimal.Decimal `json:"rentalExtraPerUnit"`
	PerUnitTotal    decimal.Decimal `json:"perUnitTotal"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	RentalDays      int             `json:"rentalDays"`
	Quantity        int32           `json:"quantity"`
	CartLineID      uuid.UUID       `json:"cartLineId"`
}

type Cart struct {
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	LineCount   int             `json:"lineCount"`
	UserID      uuid.UUID       `json:"userId"`
}
