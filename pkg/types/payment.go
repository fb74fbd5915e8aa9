package types

import (
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/shopspring/decimal"
)

type InitPaymentRequest struct {
	OrderID       int64               `json:"order_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	ReturnURL     string              `json:"return_url"`
	CancelURL     string              `json:"cancel_url,omitempty"`
}

type InitPaymentResponse struct {
	Success    bool    `json:"success"`
	PaymentID  int64   `json:"payment_id"`
	PaymentURL *string `json:"payment_url,omitempty"`
	DeepLink   *string `json:"deep_link,omitempty"`
	QRCodeURL  *string `json:"qr_code_url,omitempty"`
	Message    string  `json:"message"`
}

// PaymentStatus is the backend's view of a single payment.
type PaymentStatus struct {
	PaymentID     int64               `json:"payment_id"`
	OrderID       int64               `json:"order_id"`
	PaymentMethod string              `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	FailedReason  *string             `json:"failed_reason,omitempty"`
	RefundAmount  *decimal.Decimal    `json:"refund_amount,omitempty"`
	RefundReason  *string             `json:"refund_reason,omitempty"`
	RefundedAt    *time.Time          `json:"refunded_at,omitempty"`
}

type PaymentHistoryItem struct {
	PaymentID     int64               `json:"payment_id"`
	OrderID       int64               `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentMethod string              `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
}

type PaymentHistory struct {
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
	Payments []PaymentHistoryItem `json:"payments"`
}
