package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the backend.
type Product struct {
	ID                int64            `json:"id"`
	ProductCode       string           `json:"product_code"`
	ProductID         string           `json:"product_id"`
	Title             string           `json:"title"`
	ProductName       string           `json:"product_name"`
	CurrentPrice      decimal.Decimal  `json:"current_price"`
	CurrentPriceText  string           `json:"current_price_text"`
	Unit              string           `json:"unit"`
	OriginalPrice     *decimal.Decimal `json:"original_price,omitempty"`
	OriginalPriceText *string          `json:"original_price_text,omitempty"`
	DiscountPercent   *float64         `json:"discount_percent,omitempty"`
	DiscountText      *string          `json:"discount_text,omitempty"`
	ProductURL        *string          `json:"product_url,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
	ImageAlt          *string          `json:"image_alt,omitempty"`
	ProductPosition   *int             `json:"product_position,omitempty"`
	Description       *string          `json:"description,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         *time.Time       `json:"updated_at,omitempty"`
	AverageRating     *float64         `json:"average_rating,omitempty"`
	ReviewCount       *int             `json:"review_count,omitempty"`
	TotalSold         *int             `json:"total_sold,omitempty"`
}

// Review is a shopper's rating of a product.
type Review struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Username           string    `json:"username"`
	ProductID          int64     `json:"product_id"`
	Rating             int       `json:"rating"`
	Comment            *string   `json:"comment,omitempty"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at"`
}

// Page is the backend's paginated list shape. Review listings put their rows
// under "reviews" instead of "items".
type Page[T any] struct {
	Items   []T  `json:"items,omitempty"`
	Reviews []T  `json:"reviews,omitempty"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Pages   int  `json:"pages,omitempty"`
	HasNext bool `json:"has_next,omitempty"`
	HasPrev bool `json:"has_prev,omitempty"`
}

// Rows returns whichever row slice the backend populated.
func (p Page[T]) Rows() []T {
	if len(p.Items) > 0 {
		return p.Items
	}
	return p.Reviews
}

// Message is the generic acknowledgement body returned by delete endpoints.
type Message struct {
	Message string `json:"message"`
}
