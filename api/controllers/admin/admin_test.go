package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/greengrocer-web/internal/users"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type stubDashboard struct {
	activityLimit int
	salesDays     int
}

func (s *stubDashboard) PublicStats(ctx context.Context) (*types.PublicStats, error) {
	return &types.PublicStats{TotalUsers: 12, TotalProducts: 40}, nil
}

func (s *stubDashboard) Stats(ctx context.Context) (*types.DashboardStats, error) {
	return &types.DashboardStats{PendingOrders: 3}, nil
}

func (s *stubDashboard) UserStats(ctx context.Context) (*types.UserStats, error) {
	return &types.UserStats{}, nil
}

func (s *stubDashboard) ProductStats(ctx context.Context) (*types.ProductStats, error) {
	return &types.ProductStats{}, nil
}

func (s *stubDashboard) OrderStats(ctx context.Context) (*types.OrderStats, error) {
	return &types.OrderStats{}, nil
}

func (s *stubDashboard) RecentActivity(ctx context.Context, limit int) ([]types.RecentActivity, error) {
	s.activityLimit = limit
	return []types.RecentActivity{}, nil
}

func (s *stubDashboard) SalesAnalytics(ctx context.Context, days int) (*types.SalesAnalytics, error) {
	s.salesDays = days
	return &types.SalesAnalytics{PeriodDays: days}, nil
}

func TestPublicStats(t *testing.T) {
	rec := httptest.NewRecorder()
	PublicStats(&stubDashboard{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/public-stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data types.PublicStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.TotalUsers != 12 || body.Data.TotalProducts != 40 {
		t.Fatalf("unexpected stats %+v", body.Data)
	}
}

func TestDashboardQueryParams(t *testing.T) {
	svc := &stubDashboard{}

	rec := httptest.NewRecorder()
	RecentActivity(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recent-activity", nil))
	if rec.Code != http.StatusOK || svc.activityLimit != 10 {
		t.Fatalf("expected default limit 10, got status=%d limit=%d", rec.Code, svc.activityLimit)
	}

	rec = httptest.NewRecorder()
	SalesAnalytics(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales-analytics?days=90", nil))
	if rec.Code != http.StatusOK || svc.salesDays != 90 {
		t.Fatalf("expected days forwarded, got status=%d days=%d", rec.Code, svc.salesDays)
	}

	rec = httptest.NewRecorder()
	SalesAnalytics(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales-analytics?days=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric days, got %d", rec.Code)
	}
}

type stubUsers struct {
	listInput  users.ListInput
	updated    users.UpdateInput
	updatedID  int64
	deletedIDs []int64
}

func (s *stubUsers) List(ctx context.Context, input users.ListInput) (*types.Page[types.User], error) {
	s.listInput = input
	return &types.Page[types.User]{}, nil
}

func (s *stubUsers) Get(ctx context.Context, id int64) (*types.User, error) {
	return &types.User{ID: id}, nil
}

func (s *stubUsers) Update(ctx context.Context, id int64, input users.UpdateInput) (*types.User, error) {
	s.updatedID = id
	s.updated = input
	return &types.User{ID: id}, nil
}

func (s *stubUsers) Delete(ctx context.Context, id int64) (*types.Message, error) {
	s.deletedIDs = append(s.deletedIDs, id)
	return &types.Message{Message: "deleted"}, nil
}

func withID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestUserListFilters(t *testing.T) {
	svc := &stubUsers{}
	rec := httptest.NewRecorder()
	UserList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users?search=lan&role=admin&is_active=false&page=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	in := svc.listInput
	if in.Search != "lan" || in.Role != "admin" || in.Page != 3 {
		t.Fatalf("unexpected filters %+v", in)
	}
	if in.IsActive == nil || *in.IsActive {
		t.Fatalf("expected is_active=false, got %v", in.IsActive)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	svc := &stubUsers{}

	req := withID(httptest.NewRequest(http.MethodPut, "/api/admin/users/4", strings.NewReader(`{"role":"admin","is_active":true}`)), "4")
	rec := httptest.NewRecorder()
	UserUpdate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updatedID != 4 || svc.updated.Role == nil || *svc.updated.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected update %+v", svc.updated)
	}

	req = withID(httptest.NewRequest(http.MethodDelete, "/api/admin/users/0", nil), "0")
	rec = httptest.NewRecorder()
	UserDelete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || len(svc.deletedIDs) != 0 {
		t.Fatalf("expected invalid id rejection, got %d", rec.Code)
	}

	req = withID(httptest.NewRequest(http.MethodDelete, "/api/admin/users/4", nil), "4")
	rec = httptest.NewRecorder()
	UserDelete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || len(svc.deletedIDs) != 1 {
		t.Fatalf("expected delete, got %d", rec.Code)
	}
}
