package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

var errNoBrowser = pkgerrors.New(pkgerrors.CodeInternal, "browser context missing")

// PathID parses a positive numeric chi URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// PageParams reads page and limit from the query string.
func PageParams(r *http.Request, defaultLimit int) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", pagination.FirstPage, pagination.FirstPage, 1<<20)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Normalize(page, limit, defaultLimit), nil
}

func requestBrowser(r *http.Request) (*browser.Browser, error) {
	b := browser.FromContext(r.Context())
	if b == nil {
		return nil, errNoBrowser
	}
	return b, nil
}

func sessionUser(r *http.Request) *types.User {
	if s := auth.FromContext(r.Context()); s != nil {
		return s.User()
	}
	return nil
}

func cartStore(b *browser.Browser, locker *cart.Locker) *cart.Store {
	return cart.NewStore(b.Durable(), locker)
}
