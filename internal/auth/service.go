package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// LoginInput accepts either a username or an email.
type LoginInput struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// RegisterInput is the sign-up form. ConfirmPassword never leaves the storefront.
type RegisterInput struct {
	Email           string  `json:"email" validate:"required,email"`
	Username        string  `json:"username" validate:"required,min=3"`
	Password        string  `json:"password" validate:"required"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        *string `json:"full_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
}

func (LoginInput) ValidationMessages() map[string]string {
	return map[string]string{
		"username_or_email": "Vui lòng nhập email hoặc tên đăng nhập",
		"password":          "Vui lòng nhập mật khẩu",
	}
}

func (RegisterInput) ValidationMessages() map[string]string {
	return map[string]string{
		"email":            "Email không hợp lệ",
		"username":         "Tên đăng nhập phải có ít nhất 3 ký tự",
		"password":         "Vui lòng nhập mật khẩu",
		"confirm_password": "Mật khẩu không khớp",
	}
}

type registerPayload struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// Service exposes the auth endpoints of the backend.
type Service interface {
	Login(ctx context.Context, session *Session, input LoginInput) (*types.User, error)
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	Me(ctx context.Context) (*types.User, error)
}

type service struct {
	api apiClient
}

// NewService builds the auth service on the main backend client.
func NewService(api apiClient) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return &service{api: api}, nil
}

// Login stores the issued token, then loads and stores the profile it belongs to.
func (s *service) Login(ctx context.Context, session *Session, input LoginInput) (*types.User, error) {
	if session == nil {
		return nil, fmt.Errorf("session required")
	}
	var resp types.LoginResponse
	if err := s.api.Post(ctx, "/auth/login", input, &resp); err != nil {
		return nil, err
	}
	if err := session.SetToken(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("storing access token: %w", err)
	}

	user, err := s.Me(WithSession(ctx, session))
	if err != nil {
		return nil, err
	}
	if err := session.SetUser(ctx, user); err != nil {
		return nil, fmt.Errorf("storing user: %w", err)
	}
	return user, nil
}

// Register creates the account without signing in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	var user types.User
	payload := registerPayload{
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
		FullName: input.FullName,
		Phone:    input.Phone,
		Address:  input.Address,
	}
	if err := s.api.Post(ctx, "/auth/register", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.api.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
