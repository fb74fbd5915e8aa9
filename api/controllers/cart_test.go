package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type stubProducts struct {
	products map[int64]*types.Product
	calls    int
}

func (s *stubProducts) Get(ctx context.Context, id int64) (*types.Product, error) {
	s.calls++
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, &backend.Error{Kind: backend.KindNotFound, Status: http.StatusNotFound, Detail: "Không tìm thấy sản phẩm"}
}

type cartPayload struct {
	Items []struct {
		Product  types.Product `json:"product"`
		Quantity int           `json:"quantity"`
	} `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func TestCartLifecycle(t *testing.T) {
	client := newTestClient()
	locker := cart.NewLocker()
	products := &stubProducts{products: map[int64]*types.Product{
		7: {ID: 7, ProductName: "Cải thìa", CurrentPrice: decimal.NewFromInt(15000)},
		9: {ID: 9, ProductName: "Cà chua", CurrentPrice: decimal.NewFromInt(20000)},
	}}

	req, _ := client.request(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 7, "quantity": 2}, nil)
	rec := serve(CartAddItem(products, locker, nil), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req, _ = client.request(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 9}, nil)
	if rec := serve(CartAddItem(products, locker, nil), req); rec.Code != http.StatusOK {
		t.Fatalf("add second: expected 200, got %d", rec.Code)
	}

	req, _ = client.request(t, http.MethodPut, "/api/cart/items/7", map[string]any{"quantity": 3}, map[string]string{"productID": "7"})
	if rec := serve(CartUpdateItem(locker, nil), req); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	req, _ = client.request(t, http.MethodGet, "/api/cart", nil, nil)
	rec = serve(CartFetch(locker, nil), req)
	var got cartPayload
	decodeEnvelope(t, rec, &got)
	if len(got.Items) != 2 || got.Items[0].Product.ID != 7 || got.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if got.TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", got.TotalItems)
	}
	if !got.TotalPrice.Equal(decimal.NewFromInt(65000)) {
		t.Fatalf("expected total 65000, got %s", got.TotalPrice)
	}

	req, _ = client.request(t, http.MethodDelete, "/api/cart/items/7", nil, map[string]string{"productID": "7"})
	rec = serve(CartRemoveItem(locker, nil), req)
	got = cartPayload{}
	decodeEnvelope(t, rec, &got)
	if len(got.Items) != 1 || got.Items[0].Product.ID != 9 {
		t.Fatalf("expected only product 9 left, got %+v", got.Items)
	}

	req, _ = client.request(t, http.MethodDelete, "/api/cart", nil, nil)
	rec = serve(CartClear(locker, nil), req)
	got = cartPayload{}
	decodeEnvelope(t, rec, &got)
	if len(got.Items) != 0 || got.TotalItems != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	client := newTestClient()
	locker := cart.NewLocker()
	products := &stubProducts{products: map[int64]*types.Product{7: {ID: 7, CurrentPrice: decimal.NewFromInt(1000)}}}

	req, _ := client.request(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 7}, nil)
	serve(CartAddItem(products, locker, nil), req)

	req, _ = client.request(t, http.MethodPut, "/api/cart/items/7", map[string]any{"quantity": 0}, map[string]string{"productID": "7"})
	rec := serve(CartUpdateItem(locker, nil), req)
	var got cartPayload
	decodeEnvelope(t, rec, &got)
	if len(got.Items) != 0 {
		t.Fatalf("expected row removed, got %+v", got.Items)
	}
}

func TestCartAddItemRejectsBadInput(t *testing.T) {
	client := newTestClient()
	locker := cart.NewLocker()
	products := &stubProducts{products: map[int64]*types.Product{}}

	req, _ := client.request(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 0}, nil)
	if rec := serve(CartAddItem(products, locker, nil), req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing product id, got %d", rec.Code)
	}
	if products.calls != 0 {
		t.Fatal("backend should not be called for invalid input")
	}

	req, _ = client.request(t, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 42}, nil)
	rec := serve(CartAddItem(products, locker, nil), req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	req, _ = client.request(t, http.MethodDelete, "/api/cart/items/abc", nil, map[string]string{"productID": "abc"})
	if rec := serve(CartRemoveItem(locker, nil), req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}
