package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductDetail struct {
	Product   Product `json:"product"`
	LikeCount int64   `json:"likeCount"`
	LikedByMe bool    `json:"likedByMe"`
}

type ToggleLike struct {
	Product   Product `json:"product"`
	LikeCount int64   `json:"likeCount"`
	Liked     bool    `json:"liked"`
}
