package checkout

import (
	"strings"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// Form is the checkout contact and shipping form.
type Form struct {
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone" validate:"required,min=10,phone"`
	CustomerEmail   string              `json:"customer_email" validate:"omitempty,email"`
	ShippingAddress string              `json:"shipping_address" validate:"required,min=10"`
	Notes           string              `json:"notes"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
}

func (Form) ValidationMessages() map[string]string {
	return map[string]string{
		"customer_phone.required": "Số điện thoại phải có ít nhất 10 số",
		"customer_phone.min":      "Số điện thoại phải có ít nhất 10 số",
		"customer_phone.phone":    "Số điện thoại không hợp lệ",
		"customer_email":          "Email không hợp lệ",
		"shipping_address":        "Địa chỉ phải có ít nhất 10 ký tự",
	}
}

// normalize trims free text and defaults the method to cash on delivery.
func (f Form) normalize() Form {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.CustomerPhone = strings.TrimSpace(f.CustomerPhone)
	f.CustomerEmail = strings.TrimSpace(f.CustomerEmail)
	f.ShippingAddress = strings.TrimSpace(f.ShippingAddress)
	f.Notes = strings.TrimSpace(f.Notes)
	if f.PaymentMethod == "" {
		f.PaymentMethod = enums.PaymentMethodCOD
	}
	return f
}

// Prefill seeds the form from the signed-in profile.
func Prefill(user *types.User) Form {
	form := Form{PaymentMethod: enums.PaymentMethodCOD}
	if user == nil {
		return form
	}
	form.CustomerEmail = user.Email
	if user.FullName != nil {
		form.CustomerName = *user.FullName
	}
	if user.Phone != nil {
		form.CustomerPhone = *user.Phone
	}
	if user.Address != nil {
		form.ShippingAddress = *user.Address
	}
	return form
}
