package types

import "github.com/shopspring/decimal"

// ChatbotProduct is the trimmed product shape the assistant returns.
type ChatbotProduct struct {
	ProductID       *string         `json:"product_id,omitempty"`
	ProductCode     *string         `json:"product_code,omitempty"`
	ProductName     string          `json:"product_name"`
	Price           decimal.Decimal `json:"price"`
	PriceText       *string         `json:"price_text,omitempty"`
	Unit            *string         `json:"unit,omitempty"`
	ProductURL      *string         `json:"product_url,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	DiscountPercent *float64        `json:"discount_percent,omitempty"`
	Score           *float64        `json:"score,omitempty"`
}

type ChatbotOrder struct {
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ChatbotProfile struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ChatbotContext struct {
	Products []ChatbotProduct `json:"products,omitempty"`
	Orders   []ChatbotOrder   `json:"orders,omitempty"`
	Profile  *ChatbotProfile  `json:"profile,omitempty"`
}

type ChatSession struct {
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Reply     string         `json:"reply"`
	SessionID string         `json:"session_id"`
	Context   ChatbotContext `json:"context"`
}
