package controllers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/checkout"
	"github.com/angelmondragon/greengrocer-web/internal/payments"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var redirectPage = template.Must(template.ParseFS(templateFS, "templates/payment_redirect.html"))

const historyPageSize = 10

type redirectPageData struct {
	MethodLabel string
	*checkout.Redirect
}

// PaymentRedirectPage renders the interstitial that sends the browser to the
// gateway. On mobile wallets it tries the deep link first and falls back to
// the web URL if the page is still visible.
func PaymentRedirectPage(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		plan, err := checkout.PendingRedirect(ctx, b)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if plan == nil {
			http.Redirect(w, r, checkout.CartPath, http.StatusSeeOther)
			return
		}

		var buf bytes.Buffer
		if err := redirectPage.Execute(&buf, redirectPageData{MethodLabel: plan.Method.Label(), Redirect: plan}); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render payment redirect"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// PaymentResult checks the payment the shopper is returning from. With
// ?wait=true it polls until the gateway settles instead of checking once.
func PaymentResult(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
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
		session := auth.FromContext(ctx)
		if session == nil {
			responses.WriteError(ctx, logg, w, errNoSession)
			return
		}
		resolve := svc.ResolveResult
		if wait := validators.ParseQueryBool(r, "wait"); wait != nil && *wait {
			resolve = svc.AwaitResult
		}
		view, err := resolve(ctx, b, session, r.URL.Query().Get("payment_id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, view)
	}
}

func PaymentCancel(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
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
		view, err := svc.Cancel(ctx, b)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, view)
	}
}

// PaymentHistory lists the shopper's payments, optionally filtered by status.
func PaymentHistory(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		page, err := PageParams(r, historyPageSize)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		history, err := svc.History(ctx, payments.HistoryFilter{
			Page:   page.Page,
			Limit:  page.Limit,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, history)
	}
}
