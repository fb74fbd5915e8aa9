package types

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Order is a placed order with its line items.
type Order struct {
	ID              int64               `json:"id"`
	UserID          *int64              `json:"user_id,omitempty"`
	Username        *string             `json:"username,omitempty"`
	UserEmail       *string             `json:"user_email,omitempty"`
	OrderNumber     string              `json:"order_number"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           *string             `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	OrderItems      []OrderItem         `json:"order_items"`
}

// MarshalJSON adds the Vietnamese status labels the order pages display.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		StatusLabel        string `json:"status_label"`
		PaymentStatusLabel string `json:"payment_status_label"`
	}{plain(o), o.Status.Label(), o.PaymentStatus.Label()})
}
