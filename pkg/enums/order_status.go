package enums

import "fmt"

// OrderStatus is the fulfilment stage of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Chờ xác nhận",
	OrderStatusConfirmed: "Đã xác nhận",
	OrderStatusShipping:  "Đang giao",
	OrderStatusDelivered: "Đã giao",
	OrderStatusCancelled: "Đã hủy",
}

func (o OrderStatus) String() string {
	return string(o)
}

func (o OrderStatus) IsValid() bool {
	_, ok := orderStatusLabels[o]
	return ok
}

// Label is the Vietnamese text shown beside the status. Unknown values echo back.
func (o OrderStatus) Label() string {
	if label, ok := orderStatusLabels[o]; ok {
		return label
	}
	return string(o)
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid order status %q", value)
	}
	return status, nil
}
