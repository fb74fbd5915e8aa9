package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the backend's page size when a listing does not say otherwise.
	DefaultLimit = 20
	// MaxLimit caps how many rows a single page may request.
	MaxLimit = 100
	// FirstPage is the 1-based index of the first page.
	FirstPage = 1
)

// Params holds page/limit inputs forwarded to backend listings.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies the default page, the supplied default limit and MaxLimit.
func Normalize(page, limit, defaultLimit int) Params {
	if page < FirstPage {
		page = FirstPage
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Query returns the params in the form the backend expects on the query string.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	return q
}
