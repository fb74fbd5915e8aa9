package middleware

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// Browser resolves the visitor's identity cookies, hydrates the auth session
// from durable storage, and puts both on the request context.
func Browser(opts browser.Options, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := browser.FromRequest(w, r, opts)
			ctx := browser.WithBrowser(r.Context(), b)

			session := auth.NewSession(b.Durable())
			if err := session.Initialize(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "client state unavailable"))
				return
			}
			ctx = auth.WithSession(ctx, session)

			if logg != nil {
				ctx = logg.WithDeviceID(ctx, b.DeviceID)
				if user := session.User(); user != nil {
					ctx = logg.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
