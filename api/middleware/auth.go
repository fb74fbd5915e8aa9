package middleware

import (
	"net/http"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

const homePath = "/"

// RequireAuth rejects requests without a signed-in session and sends the
// browser to the login page.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			session := auth.FromContext(ctx)
			if session == nil || !session.IsAuthenticated() {
				navigate(r, auth.LoginPath)
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Vui lòng đăng nhập để tiếp tục"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin lets only admins through; everyone else is sent home.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			session := auth.FromContext(ctx)
			if session == nil || !session.IsAuthenticated() {
				navigate(r, homePath)
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !session.User().IsAdmin() {
				if logg != nil {
					logg.Warn(ctx, "admin.access_denied")
				}
				navigate(r, homePath)
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Bạn không có quyền truy cập"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func navigate(r *http.Request, location string) {
	if b := browser.FromContext(r.Context()); b != nil {
		b.Navigator().Push(location)
	}
}
