// Package admin serves the back-office endpoints. Every route here sits
// behind RequireAuth and RequireAdmin except the public dashboard stats.
package admin

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/greengrocer-web/api/controllers"
	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/users"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
)

func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		page, err := controllers.PageParams(r, pagination.DefaultLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		query := r.URL.Query()
		list, err := svc.List(ctx, users.ListInput{
			Page:     page.Page,
			Limit:    page.Limit,
			Search:   strings.TrimSpace(query.Get("search")),
			Role:     strings.TrimSpace(query.Get("role")),
			IsActive: validators.ParseQueryBool(r, "is_active"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, list)
	}
}

func UserDetail(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		user, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, user)
	}
}

// UserUpdate applies a partial profile change; role and active flag included.
func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input users.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		user, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, user)
	}
}

func UserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		msg, err := svc.Delete(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "target_user_id", id), "admin.user_deleted")
		}
		responses.WriteSuccess(ctx, w, msg)
	}
}
