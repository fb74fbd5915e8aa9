package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is the way a shopper settles an order.
type PaymentMethod string

const (
	PaymentMethodMoMo    PaymentMethod = "momo"
	PaymentMethodVNPay   PaymentMethod = "vnpay"
	PaymentMethodZaloPay PaymentMethod = "zalopay"
	PaymentMethodStripe  PaymentMethod = "stripe"
	PaymentMethodCOD     PaymentMethod = "cod"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodMoMo,
	PaymentMethodVNPay,
	PaymentMethodZaloPay,
	PaymentMethodStripe,
	PaymentMethodCOD,
}

// PaymentMethods lists every method in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsOnline reports whether the method hands the shopper off to an external gateway.
func (p PaymentMethod) IsOnline() bool {
	return p.IsValid() && p != PaymentMethodCOD
}

// Label is the name shown to shoppers.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodMoMo:
		return "MoMo"
	case PaymentMethodVNPay:
		return "VNPay"
	case PaymentMethodZaloPay:
		return "ZaloPay"
	case PaymentMethodStripe:
		return "Stripe"
	case PaymentMethodCOD:
		return "Thanh toán khi nhận hàng"
	default:
		return string(p)
	}
}

// SupportsDeepLink reports whether the gateway can open a native wallet app.
func (p PaymentMethod) SupportsDeepLink() bool {
	return p == PaymentMethodMoMo
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
