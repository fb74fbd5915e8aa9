package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
	names    []string
}

func (o *recordingObserver) ObserveUpstream(upstream, method string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
	o.names = append(o.names, upstream+":"+method)
}

func TestClientAttachesTokenAndDecodes(t *testing.T) {
	var captured *http.Request
	var capturedBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":12,"order_number":"ORD-12"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client, err := NewClient(srv.URL+"/api/v1/", WithName("api"), WithObserver(obs), WithTokenSource(func(context.Context) (string, error) {
		return "tok-123", nil
	}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var out struct {
		ID          int    `json:"id"`
		OrderNumber string `json:"order_number"`
	}
	if err := client.Post(context.Background(), "/orders", map[string]any{"shipping_address": "12 Nguyen Hue"}, &out); err != nil {
		t.Fatalf("post: %v", err)
	}
	if captured.URL.Path != "/api/v1/orders" {
		t.Fatalf("unexpected path %s", captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if captured.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("missing content type")
	}
	if capturedBody["shipping_address"] != "12 Nguyen Hue" {
		t.Fatalf("unexpected body %v", capturedBody)
	}
	if out.ID != 12 || out.OrderNumber != "ORD-12" {
		t.Fatalf("unexpected decode %+v", out)
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != 200 || obs.names[0] != "api:POST" {
		t.Fatalf("unexpected observations %v %v", obs.statuses, obs.names)
	}
}

func TestClientOmitsAuthWhenAnonymousAndEncodesQuery(t *testing.T) {
	var captured *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`[]`)), Header: http.Header{}}, nil
	})
	client, err := NewClient("http://api.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}), WithTokenSource(func(context.Context) (string, error) {
		return "", nil
	}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var out []map[string]any
	q := url.Values{"page": {"2"}, "search": {"rau muống"}}
	if err := client.Get(context.Background(), "products", q, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if captured.Header.Get("Authorization") != "" {
		t.Fatal("anonymous requests must not carry a bearer token")
	}
	if captured.URL.Query().Get("search") != "rau muống" || captured.URL.Query().Get("page") != "2" {
		t.Fatalf("unexpected query %s", captured.URL.RawQuery)
	}
}

func TestClientUnauthorizedInvokesHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	calls := 0
	client, _ := NewClient(srv.URL, WithUnauthorizedHandler(func(context.Context) { calls++ }))
	err := client.Get(context.Background(), "/auth/me", nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected handler once, got %d", calls)
	}
	if Message(err) != "Could not validate credentials" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestClientWithoutHandlerLeavesUnauthorizedToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, WithName("chatbot"))
	err := client.Post(context.Background(), "/chatbot/message", map[string]string{"message": "hi"}, nil)
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", StatusOf(err))
	}
	if Message(err) != msgUnauthorized {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestClientNetworkFailure(t *testing.T) {
	obs := &recordingObserver{}
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	client, _ := NewClient("http://api.test", WithHTTPClient(&http.Client{Transport: rt}), WithObserver(obs))

	err := client.Get(context.Background(), "/products", nil, nil)
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindNetwork || apiErr.Status != 0 {
		t.Fatalf("expected network error, got %v", err)
	}
	if Message(err) != msgNetwork {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != 0 {
		t.Fatalf("expected status 0 observation, got %v", obs.statuses)
	}
}

func TestClientTokenSourceError(t *testing.T) {
	client, _ := NewClient("http://api.test", WithTokenSource(func(context.Context) (string, error) {
		return "", errors.New("redis down")
	}))
	if err := client.Get(context.Background(), "/orders", nil, nil); err == nil || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("expected token source error, got %v", err)
	}
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected empty base url to fail")
	}
	if _, err := NewClient("not a url"); err == nil {
		t.Fatal("expected relative base url to fail")
	}
}

func TestClientForwardsRequestID(t *testing.T) {
	var got string
	client, err := NewClient("http://backend.test/api/v1", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			got = req.Header.Get(RequestIDHeader)
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`{}`)),
			}, nil
		}),
	}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-abc-123")
	if err := client.Get(ctx, "/products", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "req-abc-123" {
		t.Fatalf("expected forwarded request id, got %q", got)
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Fatal("bare context carries no request id")
	}
}
