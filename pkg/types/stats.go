package types

import "github.com/shopspring/decimal"

// PublicStats is served without authentication.
type PublicStats struct {
	TotalUsers    int             `json:"total_users"`
	TotalProducts int             `json:"total_products"`
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type RecentOrderSummary struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Username    string          `json:"username"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type TopProduct struct {
	ID           int64           `json:"id"`
	ProductName  string          `json:"product_name"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type DashboardStats struct {
	TotalUsers       int                  `json:"total_users"`
	TotalProducts    int                  `json:"total_products"`
	TotalOrders      int                  `json:"total_orders"`
	TotalRevenue     decimal.Decimal      `json:"total_revenue"`
	PendingOrders    int                  `json:"pending_orders"`
	LowStockProducts int                  `json:"low_stock_products"`
	RecentOrders     []RecentOrderSummary `json:"recent_orders"`
	TopProducts      []TopProduct         `json:"top_products"`
	MonthlyRevenue   []MonthlyRevenue     `json:"monthly_revenue"`
}

// RecentActivity is one entry of the admin activity feed; the optional fields
// depend on Type (order, review or user).
type RecentActivity struct {
	Type        string           `json:"type"`
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	CreatedAt   string           `json:"created_at"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Rating      *int             `json:"rating,omitempty"`
	Email       *string          `json:"email,omitempty"`
}

type UserStats struct {
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
	NewUsersThisMonth int `json:"new_users_this_month"`
	UsersByRole       struct {
		Customer int `json:"customer"`
		Admin    int `json:"admin"`
	} `json:"users_by_role"`
}

type ProductStats struct {
	TotalProducts   int `json:"total_products"`
	ActiveProducts  int `json:"active_products"`
	OutOfStock      int `json:"out_of_stock"`
	LowStock        int `json:"low_stock"`
	TotalCategories int `json:"total_categories"`
}

type OrderStats struct {
	TotalOrders       int             `json:"total_orders"`
	PendingOrders     int             `json:"pending_orders"`
	CompletedOrders   int             `json:"completed_orders"`
	CancelledOrders   int             `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesAnalytics struct {
	PeriodDays  int          `json:"period_days"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	DailySales  []DailySales `json:"daily_sales"`
	TopProducts []TopProduct `json:"top_products"`
}
