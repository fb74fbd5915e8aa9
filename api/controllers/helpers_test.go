package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type testClient struct {
	store clientstate.Store
	user  *types.User
}

func newTestClient() *testClient {
	return &testClient{store: clientstate.NewMemoryStore()}
}

// request builds a request carrying the same browser identity on every call,
// so state written by one handler is visible to the next.
func (c *testClient) request(t *testing.T, method, target string, body any, params map[string]string) (*http.Request, *browser.Browser) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	b := browser.New("device-1", "session-1", c.store, browser.TTLs{Device: time.Hour, Session: time.Hour})
	b.Path = req.URL.Path
	b.Origin = "https://shop.example"
	ctx := browser.WithBrowser(req.Context(), b)

	session := auth.NewSession(b.Durable())
	if c.user != nil {
		if err := session.SetToken(ctx, "token"); err != nil {
			t.Fatalf("set token: %v", err)
		}
		if err := session.SetUser(ctx, c.user); err != nil {
			t.Fatalf("set user: %v", err)
		}
	}
	if err := session.Initialize(ctx); err != nil {
		t.Fatalf("initialize session: %v", err)
	}
	ctx = auth.WithSession(ctx, session)

	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for k, v := range params {
			routeCtx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return req.WithContext(ctx), b
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Error    *types.APIError `json:"error"`
	Redirect string          `json:"redirect"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}
