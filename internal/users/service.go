// Package users wraps the backend's admin user management endpoints.
package users

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
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type ListInput struct {
	Page     int
	Limit    int
	Search   string
	Role     string
	IsActive *bool
}

// UpdateInput is a partial profile change made by an admin.
type UpdateInput struct {
	FullName *string         `json:"full_name,omitempty"`
	Phone    *string         `json:"phone,omitempty" validate:"omitempty,phone"`
	Address  *string         `json:"address,omitempty"`
	Role     *enums.UserRole `json:"role,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

func (UpdateInput) ValidationMessages() map[string]string {
	return map[string]string{"phone": "Số điện thoại không hợp lệ"}
}

type Service interface {
	List(ctx context.Context, input ListInput) (*types.Page[types.User], error)
	Get(ctx context.Context, id int64) (*types.User, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*types.User, error)
	Delete(ctx context.Context, id int64) (*types.Message, error)
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

func (s *service) List(ctx context.Context, input ListInput) (*types.Page[types.User], error) {
	query := pagination.Normalize(input.Page, input.Limit, pagination.DefaultLimit).Query()
	if search := strings.TrimSpace(input.Search); search != "" {
		query.Set("search", search)
	}
	if role, err := enums.ParseUserRole(input.Role); err == nil {
		query.Set("role", role.String())
	}
	if input.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*input.IsActive))
	}
	var page types.Page[types.User]
	if err := s.api.Get(ctx, "/admin/users", query, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []types.User{}
	}
	return &page, nil
}

func (s *service) Get(ctx context.Context, id int64) (*types.User, error) {
	var user types.User
	if err := s.api.Get(ctx, userPath(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*types.User, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", *input.Role)
	}
	var user types.User
	if err := s.api.Put(ctx, userPath(id), input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*types.Message, error) {
	var msg types.Message
	if err := s.api.Delete(ctx, userPath(id), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func userPath(id int64) string {
	return "/admin/users/" + strconv.FormatInt(id, 10)
}
