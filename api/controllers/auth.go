package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

var errNoSession = pkgerrors.New(pkgerrors.CodeInternal, "auth session missing")

// AuthLogin signs the shopper in and sends them to the storefront home.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		session := auth.FromContext(ctx)
		if session == nil {
			responses.WriteError(ctx, logg, w, errNoSession)
			return
		}

		var input auth.LoginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Login(ctx, session, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
			logg.Info(ctx, "auth.login")
		}
		navigate(r, "/")
		responses.WriteSuccess(ctx, w, session.State())
	}
}

// AuthRegister creates the account without signing in; the shopper lands on login.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var input auth.RegisterInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Register(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		navigate(r, auth.LoginPath)
		responses.WriteSuccessStatus(ctx, w, http.StatusCreated, user)
	}
}

func AuthLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := auth.FromContext(ctx)
		if session == nil {
			responses.WriteError(ctx, logg, w, errNoSession)
			return
		}
		if err := session.Logout(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		navigate(r, "/")
		responses.WriteSuccess(ctx, w, session.State())
	}
}

// AuthMe refreshes the stored user from the backend.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		user, err := svc.Me(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if session := auth.FromContext(ctx); session != nil {
			if err := session.SetUser(ctx, user); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}
		responses.WriteSuccess(ctx, w, user)
	}
}

func navigate(r *http.Request, location string) {
	if b, err := requestBrowser(r); err == nil {
		b.Navigator().Push(location)
	}
}
