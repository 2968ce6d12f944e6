package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Name     string          `validate:"required"    json:"name"`
	Price    decimal.Decimal `validate:"decimalgte0" json:"price"`
	Image    string          `                       json:"image"`
	Category string          `                       json:"category"`
}

type UpdateProduct struct {
	Name     *string          `validate:"omitempty,min=1"       json:"name,omitempty"`
	Price    *decimal.Decimal `validate:"omitempty,decimalgte0" json:"price,omitempty"`
	Image    *string          `                                 json:"image,omitempty"`
	Category *string          `                                 json:"category,omitempty"`
}

type ToggleFavorite struct {
	ProductID uuid.UUID `validate:"required" json:"productId"`
}
