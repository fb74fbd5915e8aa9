package enums

import "fmt"

// PaymentStatus tracks a payment as reported by the backend.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// paymentStatusLabels doubles as the set of known statuses.
var paymentStatusLabels = map[PaymentStatus]string{
	PaymentStatusPending:  "Chưa thanh toán",
	PaymentStatusPaid:     "Đã thanh toán",
	PaymentStatusFailed:   "Thất bại",
	PaymentStatusRefunded: "Đã hoàn tiền",
}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	_, ok := paymentStatusLabels[p]
	return ok
}

// Label is the Vietnamese text shown beside the status. Unknown values echo back.
func (p PaymentStatus) Label() string {
	if label, ok := paymentStatusLabels[p]; ok {
		return label
	}
	return string(p)
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	status := PaymentStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return status, nil
}
