package types

import (
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/shopspring/decimal"
)

// User is the account profile returned by /auth/me and the admin endpoints.
type User struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	Username    string           `json:"username"`
	FullName    *string          `json:"full_name,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Role        enums.UserRole   `json:"role"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
	TotalOrders *int             `json:"total_orders,omitempty"`
	TotalSpent  *decimal.Decimal `json:"total_spent,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == enums.UserRoleAdmin
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
