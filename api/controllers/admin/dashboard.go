package admin

import (
	"context"
	"net/http"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/dashboard"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// statsHandler serves one parameterless dashboard read.
func statsHandler[T any](svc dashboard.Service, logg *logger.Logger, read func(dashboard.Service, context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		out, err := read(svc, ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, out)
	}
}

// PublicStats is the unauthenticated storefront counter strip.
func PublicStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return statsHandler(svc, logg, dashboard.Service.PublicStats)
}

func Stats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return statsHandler(svc, logg, dashboard.Service.Stats)
}

func UserStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return statsHandler(svc, logg, dashboard.Service.UserStats)
}

func ProductStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return statsHandler(svc, logg, dashboard.Service.ProductStats)
}

func OrderStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return statsHandler(svc, logg, dashboard.Service.OrderStats)
}

// RecentActivity takes ?limit=; the service clamps it.
func RecentActivity(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", dashboard.DefaultActivityLimit, 1, 1000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := svc.RecentActivity(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, out)
	}
}

// SalesAnalytics takes ?days=; the service clamps it.
func SalesAnalytics(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", dashboard.DefaultSalesDays, 1, 3650)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := svc.SalesAnalytics(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, out)
	}
}
