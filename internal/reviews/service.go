// Package reviews wraps the backend's product review endpoints.
package reviews

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// DefaultPageSize applies to both review listings.
const DefaultPageSize = 10

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type CreateInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

func (CreateInput) ValidationMessages() map[string]string {
	return map[string]string{"rating": "Vui lòng chọn số sao từ 1 đến 5"}
}

// Created acknowledges a new review.
type Created struct {
	Message  string `json:"message"`
	ReviewID int64  `json:"review_id"`
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Created, error)
	ListForProduct(ctx context.Context, productID int64, page, limit int) (*types.Page[types.Review], error)
	ListMine(ctx context.Context, page, limit int) (*types.Page[types.Review], error)
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

func (s *service) Create(ctx context.Context, input CreateInput) (*Created, error) {
	var created Created
	if err := s.api.Post(ctx, "/reviews", input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *service) ListForProduct(ctx context.Context, productID int64, page, limit int) (*types.Page[types.Review], error) {
	return s.list(ctx, "/reviews/products/"+strconv.FormatInt(productID, 10), page, limit)
}

func (s *service) ListMine(ctx context.Context, page, limit int) (*types.Page[types.Review], error) {
	return s.list(ctx, "/reviews/my-reviews", page, limit)
}

// list normalizes either listing shape so rows always sit under Reviews.
func (s *service) list(ctx context.Context, path string, page, limit int) (*types.Page[types.Review], error) {
	var out types.Page[types.Review]
	query := pagination.Normalize(page, limit, DefaultPageSize).Query()
	if err := s.api.Get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	out.Reviews = out.Rows()
	out.Items = nil
	if out.Reviews == nil {
		out.Reviews = []types.Review{}
	}
	return &out, nil
}
