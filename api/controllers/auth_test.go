package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type stubAuthService struct {
	user        *types.User
	loginErr    error
	registered  *auth.RegisterInput
	meCalls     int
	loginInputs []auth.LoginInput
}

func (s *stubAuthService) Login(ctx context.Context, session *auth.Session, input auth.LoginInput) (*types.User, error) {
	s.loginInputs = append(s.loginInputs, input)
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	if err := session.SetToken(ctx, "jwt"); err != nil {
		return nil, err
	}
	if err := session.SetUser(ctx, s.user); err != nil {
		return nil, err
	}
	return s.user, nil
}

func (s *stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*types.User, error) {
	s.registered = &input
	return &types.User{ID: 99, Email: input.Email, Username: input.Username, Role: enums.UserRoleCustomer}, nil
}

func (s *stubAuthService) Me(ctx context.Context) (*types.User, error) {
	s.meCalls++
	return s.user, nil
}

func TestAuthLoginNavigatesHome(t *testing.T) {
	client := newTestClient()
	svc := &stubAuthService{user: &types.User{ID: 5, Username: "lan", Role: enums.UserRoleCustomer}}

	req, _ := client.request(t, http.MethodPost, "/api/auth/login", map[string]string{"username_or_email": "lan", "password": "secret"}, nil)
	rec := serve(AuthLogin(svc, nil), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var state auth.State
	env := decodeEnvelope(t, rec, &state)
	if env.Redirect != "/" {
		t.Fatalf("expected redirect to home, got %q", env.Redirect)
	}
	if !state.IsAuthenticated || state.User == nil || state.User.ID != 5 {
		t.Fatalf("unexpected state %+v", state)
	}

	// A fresh request from the same browser sees the stored user.
	req, _ = client.request(t, http.MethodGet, "/api/session", nil, nil)
	rec = serve(SessionState(), req)
	var session sessionResponse
	decodeEnvelope(t, rec, &session)
	if !session.IsAuthenticated || session.User.ID != 5 {
		t.Fatalf("expected persisted login, got %+v", session)
	}
}

func TestAuthLoginValidationAndFailure(t *testing.T) {
	client := newTestClient()
	svc := &stubAuthService{loginErr: &backend.Error{Kind: backend.KindUnauthorized, Status: http.StatusUnauthorized, Detail: "Sai tên đăng nhập hoặc mật khẩu"}}

	req, _ := client.request(t, http.MethodPost, "/api/auth/login", map[string]string{"username_or_email": "lan"}, nil)
	rec := serve(AuthLogin(svc, nil), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rec.Code)
	}
	if len(svc.loginInputs) != 0 {
		t.Fatal("service should not be called when validation fails")
	}

	req, _ = client.request(t, http.MethodPost, "/api/auth/login", map[string]string{"username_or_email": "lan", "password": "nope"}, nil)
	rec = serve(AuthLogin(svc, nil), req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec, nil)
	if env.Error == nil || env.Error.Message != "Sai tên đăng nhập hoặc mật khẩu" {
		t.Fatalf("expected backend detail surfaced, got %+v", env.Error)
	}
}

func TestAuthRegisterSendsToLogin(t *testing.T) {
	client := newTestClient()
	svc := &stubAuthService{}

	body := map[string]string{
		"email":            "lan@example.com",
		"username":         "lan",
		"password":         "secret123",
		"confirm_password": "secret123",
	}
	req, _ := client.request(t, http.MethodPost, "/api/auth/register", body, nil)
	rec := serve(AuthRegister(svc, nil), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec, nil)
	if env.Redirect != auth.LoginPath {
		t.Fatalf("expected login redirect, got %q", env.Redirect)
	}
	if svc.registered == nil || svc.registered.Username != "lan" {
		t.Fatalf("unexpected register input %+v", svc.registered)
	}

	body["confirm_password"] = "different"
	req, _ = client.request(t, http.MethodPost, "/api/auth/register", body, nil)
	rec = serve(AuthRegister(svc, nil), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched passwords, got %d", rec.Code)
	}
}

func TestAuthLogoutClearsSession(t *testing.T) {
	client := newTestClient()
	client.user = &types.User{ID: 5, Role: enums.UserRoleCustomer}

	req, _ := client.request(t, http.MethodPost, "/api/auth/logout", nil, nil)
	rec := serve(AuthLogout(nil), req)
	var state auth.State
	env := decodeEnvelope(t, rec, &state)
	if state.IsAuthenticated || state.User != nil {
		t.Fatalf("expected logged out state, got %+v", state)
	}
	if env.Redirect != "/" {
		t.Fatalf("expected home redirect, got %q", env.Redirect)
	}

	client.user = nil
	req, _ = client.request(t, http.MethodGet, "/api/session", nil, nil)
	var session sessionResponse
	decodeEnvelope(t, serve(SessionState(), req), &session)
	if session.IsAuthenticated {
		t.Fatal("logout should clear the stored user")
	}
}

func TestAuthMeRefreshesStoredUser(t *testing.T) {
	client := newTestClient()
	client.user = &types.User{ID: 5, Username: "old", Role: enums.UserRoleCustomer}
	svc := &stubAuthService{user: &types.User{ID: 5, Username: "new", Role: enums.UserRoleCustomer}}

	req, _ := client.request(t, http.MethodGet, "/api/auth/me", nil, nil)
	rec := serve(AuthMe(svc, nil), req)
	var user types.User
	decodeEnvelope(t, rec, &user)
	if user.Username != "new" || svc.meCalls != 1 {
		t.Fatalf("unexpected me response %+v", user)
	}
	if got := auth.FromContext(req.Context()).User(); got.Username != "new" {
		t.Fatalf("expected session user refreshed, got %q", got.Username)
	}
}
