package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
)

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func TestCreateSendsCartLines(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":31,"order_number":"ORD-31","status":"pending","payment_status":"pending","total_amount":45000}`))
	})

	order, err := svc.Create(context.Background(), CreateInput{
		ShippingAddress: "12 Nguyen Hue, Quan 1",
		CustomerPhone:   "0901234567",
		Items:           []ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.ID != 31 || order.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
	items, _ := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected two lines, got %v", body["items"])
	}
	if _, ok := body["customer_email"]; ok {
		t.Fatal("empty email should be omitted")
	}
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called")
	})
	if _, err := svc.Create(context.Background(), CreateInput{ShippingAddress: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestListReturnsArray(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"id":1,"order_number":"ORD-1"},{"id":2,"order_number":"ORD-2"}]`))
	})
	orders, err := svc.List(context.Background(), ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 || orders[1].OrderNumber != "ORD-2" {
		t.Fatalf("unexpected orders %+v", orders)
	}
}

func TestAdminListDropsUnknownFilters(t *testing.T) {
	var gotQuery string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[],"total":0,"page":1,"limit":20}`))
	})
	_, err := svc.AdminList(context.Background(), AdminListInput{Status: "shipping", PaymentStatus: "bogus"})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if gotQuery != "limit=20&page=1&status=shipping" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestAdminUpdateValidatesStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"status":"delivered"}`))
	})
	bad := enums.OrderStatus("lost")
	if _, err := svc.AdminUpdate(context.Background(), 3, UpdateInput{Status: &bad}); err == nil {
		t.Fatal("expected invalid status error")
	}
	good := enums.OrderStatusDelivered
	order, err := svc.AdminUpdate(context.Background(), 3, UpdateInput{Status: &good})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("unexpected order %+v", order)
	}
}
