// Package products wraps the backend's catalog endpoints, public and admin.
package products

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
	"github.com/shopspring/decimal"
)

// DefaultPageSize is the storefront catalog page size.
const DefaultPageSize = 12

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type ListInput struct {
	Page   int
	Limit  int
	Search string
}

// AdminListInput adds the back-office filters to ListInput.
type AdminListInput struct {
	ListInput
	IsActive *bool
	LowStock *bool
}

// CreateInput is the admin payload for a new product.
type CreateInput struct {
	ProductCode       string           `json:"product_code" validate:"required"`
	ProductID         *string          `json:"product_id,omitempty"`
	Title             *string          `json:"title,omitempty"`
	ProductName       string           `json:"product_name" validate:"required"`
	CurrentPrice      decimal.Decimal  `json:"current_price"`
	CurrentPriceText  *string          `json:"current_price_text,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	OriginalPrice     *decimal.Decimal `json:"original_price,omitempty"`
	OriginalPriceText *string          `json:"original_price_text,omitempty"`
	DiscountPercent   *float64         `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountText      *string          `json:"discount_text,omitempty"`
	ProductURL        *string          `json:"product_url,omitempty" validate:"omitempty,url"`
	ImageURL          *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageAlt          *string          `json:"image_alt,omitempty"`
	ProductPosition   *int             `json:"product_position,omitempty"`
	Description       *string          `json:"description,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
}

// UpdateInput carries only the fields being changed.
type UpdateInput struct {
	ProductName       *string          `json:"product_name,omitempty" validate:"omitempty,min=1"`
	CurrentPrice      *decimal.Decimal `json:"current_price,omitempty"`
	CurrentPriceText  *string          `json:"current_price_text,omitempty"`
	OriginalPrice     *decimal.Decimal `json:"original_price,omitempty"`
	OriginalPriceText *string          `json:"original_price_text,omitempty"`
	DiscountPercent   *float64         `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountText      *string          `json:"discount_text,omitempty"`
	ProductURL        *string          `json:"product_url,omitempty" validate:"omitempty,url"`
	ImageURL          *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageAlt          *string          `json:"image_alt,omitempty"`
	ProductPosition   *int             `json:"product_position,omitempty"`
	Description       *string          `json:"description,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// Service exposes catalog reads and admin product management.
type Service interface {
	List(ctx context.Context, input ListInput) ([]types.Product, error)
	Get(ctx context.Context, id int64) (*types.Product, error)
	AdminList(ctx context.Context, input AdminListInput) (*types.Page[types.Product], error)
	AdminGet(ctx context.Context, id int64) (*types.Product, error)
	Create(ctx context.Context, input CreateInput) (*types.Product, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*types.Product, error)
	Delete(ctx context.Context, id int64) error
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

// List returns one catalog page. The public listing is a bare array.
func (s *service) List(ctx context.Context, input ListInput) ([]types.Product, error) {
	items := []types.Product{}
	if err := s.api.Get(ctx, "/products", input.query(), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.Product{}
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id int64) (*types.Product, error) {
	return s.get(ctx, "/products/"+strconv.FormatInt(id, 10))
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*types.Page[types.Product], error) {
	query := input.query()
	if input.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*input.IsActive))
	}
	if input.LowStock != nil {
		query.Set("low_stock", strconv.FormatBool(*input.LowStock))
	}
	var page types.Page[types.Product]
	if err := s.api.Get(ctx, "/admin/products", query, &page); err != nil {
		return nil, err
	}
	return normalizePage(&page), nil
}

func (s *service) AdminGet(ctx context.Context, id int64) (*types.Product, error) {
	return s.get(ctx, adminPath(id))
}

func (s *service) Create(ctx context.Context, input CreateInput) (*types.Product, error) {
	var product types.Product
	if err := s.api.Post(ctx, "/admin/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*types.Product, error) {
	var product types.Product
	if err := s.api.Put(ctx, adminPath(id), input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, adminPath(id), nil)
}

func (s *service) get(ctx context.Context, path string) (*types.Product, error) {
	var product types.Product
	if err := s.api.Get(ctx, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (in ListInput) query() url.Values {
	query := pagination.Normalize(in.Page, in.Limit, DefaultPageSize).Query()
	if search := strings.TrimSpace(in.Search); search != "" {
		query.Set("search", search)
	}
	return query
}

func adminPath(id int64) string {
	return "/admin/products/" + strconv.FormatInt(id, 10)
}

func normalizePage(page *types.Page[types.Product]) *types.Page[types.Product] {
	if page.Items == nil {
		page.Items = []types.Product{}
	}
	return page
}
