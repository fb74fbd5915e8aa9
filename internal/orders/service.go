// Package orders wraps the backend's order endpoints for shoppers and admins.
package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// ItemInput is one (product, quantity) pair copied from the cart.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateInput is the order-creation payload.
type CreateInput struct {
	ShippingAddress string      `json:"shipping_address"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	CustomerName    string      `json:"customer_name,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Items           []ItemInput `json:"items"`
}

type ListInput struct {
	Page  int
	Limit int
}

// AdminListInput filters the back-office order table.
type AdminListInput struct {
	ListInput
	Search        string
	Status        string
	PaymentStatus string
}

// UpdateInput is the admin status change. Nil fields are left alone.
type UpdateInput struct {
	Status        *enums.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *enums.PaymentStatus `json:"payment_status,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*types.Order, error)
	List(ctx context.Context, input ListInput) ([]types.Order, error)
	Get(ctx context.Context, id int64) (*types.Order, error)
	AdminList(ctx context.Context, input AdminListInput) (*types.Page[types.Order], error)
	AdminGet(ctx context.Context, id int64) (*types.Order, error)
	AdminUpdate(ctx context.Context, id int64, input UpdateInput) (*types.Order, error)
}

type service struct {
	api apiClient
}

func NewService(api apiClient) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return &service{api: api}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*types.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order requires at least one item")
	}
	var order types.Order
	if err := s.api.Post(ctx, "/orders", input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the shopper's own orders. The backend answers with a bare array.
func (s *service) List(ctx context.Context, input ListInput) ([]types.Order, error) {
	items := []types.Order{}
	if err := s.api.Get(ctx, "/orders", input.query(), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.Order{}
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id int64) (*types.Order, error) {
	return s.get(ctx, "/orders/"+strconv.FormatInt(id, 10))
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*types.Page[types.Order], error) {
	query := input.query()
	if search := strings.TrimSpace(input.Search); search != "" {
		query.Set("search", search)
	}
	if status, err := enums.ParseOrderStatus(input.Status); err == nil {
		query.Set("status", status.String())
	}
	if status, err := enums.ParsePaymentStatus(input.PaymentStatus); err == nil {
		query.Set("payment_status", status.String())
	}
	var page types.Page[types.Order]
	if err := s.api.Get(ctx, "/admin/orders", query, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []types.Order{}
	}
	return &page, nil
}

func (s *service) AdminGet(ctx context.Context, id int64) (*types.Order, error) {
	return s.get(ctx, adminPath(id))
}

func (s *service) AdminUpdate(ctx context.Context, id int64, input UpdateInput) (*types.Order, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", *input.Status)
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status %q", *input.PaymentStatus)
	}
	var order types.Order
	if err := s.api.Put(ctx, adminPath(id), input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) get(ctx context.Context, path string) (*types.Order, error) {
	var order types.Order
	if err := s.api.Get(ctx, path, nil, &order); err != nil {
		return nil, err
	}
	if order.OrderItems == nil {
		order.OrderItems = []types.OrderItem{}
	}
	return &order, nil
}

func (in ListInput) query() url.Values {
	return pagination.Normalize(in.Page, in.Limit, pagination.DefaultLimit).Query()
}

func adminPath(id int64) string {
	return "/admin/orders/" + strconv.FormatInt(id, 10)
}
