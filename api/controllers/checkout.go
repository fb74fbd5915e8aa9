package controllers

import (
	"net/http"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/checkout"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// CheckoutView returns the checkout page model, prefilled from the profile.
// An empty cart with nothing in flight redirects back to the cart.
func CheckoutView(svc *checkout.Service, locker *cart.Locker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		c, err := cartStore(b, locker).Load(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Prepare(ctx, b, c, sessionUser(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, view)
	}
}

// CheckoutSubmit places the order and returns where the browser goes next.
func CheckoutSubmit(svc *checkout.Service, locker *cart.Locker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Submit(ctx, b, cartStore(b, locker), form)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(ctx, w, http.StatusCreated, result)
	}
}
