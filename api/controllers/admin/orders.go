package admin

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/greengrocer-web/api/controllers"
	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/orders"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
)

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		page, err := controllers.PageParams(r, pagination.DefaultLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		query := r.URL.Query()
		list, err := svc.AdminList(ctx, orders.AdminListInput{
			ListInput:     orders.ListInput{Page: page.Page, Limit: page.Limit},
			Search:        strings.TrimSpace(query.Get("search")),
			Status:        strings.TrimSpace(query.Get("status")),
			PaymentStatus: strings.TrimSpace(query.Get("payment_status")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, list)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		order, err := svc.AdminGet(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, order)
	}
}

// OrderUpdate changes order or payment status and notes.
func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input orders.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		order, err := svc.AdminUpdate(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "order_id", id), "admin.order_updated")
		}
		responses.WriteSuccess(ctx, w, order)
	}
}
