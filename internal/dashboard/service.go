// Package dashboard wraps the backend's admin analytics endpoints.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 50

	DefaultSalesDays = 30
	MinSalesDays     = 7
	MaxSalesDays     = 365
)

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

type Service interface {
	PublicStats(ctx context.Context) (*types.PublicStats, error)
	Stats(ctx context.Context) (*types.DashboardStats, error)
	UserStats(ctx context.Context) (*types.UserStats, error)
	ProductStats(ctx context.Context) (*types.ProductStats, error)
	OrderStats(ctx context.Context) (*types.OrderStats, error)
	RecentActivity(ctx context.Context, limit int) ([]types.RecentActivity, error)
	SalesAnalytics(ctx context.Context, days int) (*types.SalesAnalytics, error)
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

func (s *service) PublicStats(ctx context.Context) (*types.PublicStats, error) {
	var out types.PublicStats
	if err := s.api.Get(ctx, "/admin/dashboard/public-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Stats(ctx context.Context) (*types.DashboardStats, error) {
	var out types.DashboardStats
	if err := s.api.Get(ctx, "/admin/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) UserStats(ctx context.Context) (*types.UserStats, error) {
	var out types.UserStats
	if err := s.api.Get(ctx, "/admin/dashboard/user-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) ProductStats(ctx context.Context) (*types.ProductStats, error) {
	var out types.ProductStats
	if err := s.api.Get(ctx, "/admin/dashboard/product-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) OrderStats(ctx context.Context) (*types.OrderStats, error) {
	var out types.OrderStats
	if err := s.api.Get(ctx, "/admin/dashboard/order-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentActivity clamps limit to 1..50, defaulting to 10.
func (s *service) RecentActivity(ctx context.Context, limit int) ([]types.RecentActivity, error) {
	limit = clamp(limit, DefaultActivityLimit, 1, MaxActivityLimit)
	out := []types.RecentActivity{}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := s.api.Get(ctx, "/admin/dashboard/recent-activity", query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.RecentActivity{}
	}
	return out, nil
}

// SalesAnalytics clamps days to 7..365, defaulting to 30.
func (s *service) SalesAnalytics(ctx context.Context, days int) (*types.SalesAnalytics, error) {
	days = clamp(days, DefaultSalesDays, MinSalesDays, MaxSalesDays)
	var out types.SalesAnalytics
	query := url.Values{"days": {strconv.Itoa(days)}}
	if err := s.api.Get(ctx, "/admin/dashboard/sales-analytics", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func clamp(value, def, min, max int) int {
	if value == 0 {
		return def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
