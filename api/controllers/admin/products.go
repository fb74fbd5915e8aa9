package admin

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/greengrocer-web/api/controllers"
	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/products"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
)

func productsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable")
}

// ProductList supports search plus the is_active and low_stock filters.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, productsUnavailable())
			return
		}
		page, err := controllers.PageParams(r, pagination.DefaultLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		list, err := svc.AdminList(ctx, products.AdminListInput{
			ListInput: products.ListInput{
				Page:   page.Page,
				Limit:  page.Limit,
				Search: strings.TrimSpace(r.URL.Query().Get("search")),
			},
			IsActive: validators.ParseQueryBool(r, "is_active"),
			LowStock: validators.ParseQueryBool(r, "low_stock"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, list)
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, productsUnavailable())
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.AdminGet(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, product)
	}
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, productsUnavailable())
			return
		}
		var input products.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(ctx, w, http.StatusCreated, product)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, productsUnavailable())
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var input products.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, productsUnavailable())
			return
		}
		id, err := controllers.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
