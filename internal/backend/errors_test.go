package backend

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
)

func TestMessageTranslations(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"string detail", newStatusError(400, []byte(`{"detail":"Sản phẩm đã hết hàng"}`)), "Sản phẩm đã hết hàng"},
		{"object detail", newStatusError(409, []byte(`{"detail":{"message":"Đơn hàng đã tồn tại"}}`)), "Đơn hàng đã tồn tại"},
		{"validation list", newStatusError(422, []byte(`{"detail":[{"loc":["body","customer_phone"],"msg":"too short"},{"loc":["body",0],"msg":""},{"msg":"bad"}]}`)), "customer_phone: too short, field: Invalid value, field: bad"},
		{"400", newStatusError(400, nil), "Yêu cầu không hợp lệ"},
		{"401", newStatusError(401, nil), "Chưa đăng nhập hoặc phiên đã hết hạn"},
		{"403", newStatusError(403, []byte(`not json`)), "Bạn không có quyền truy cập"},
		{"404", newStatusError(404, []byte(`{}`)), "Không tìm thấy dữ liệu"},
		{"422 bare", newStatusError(422, nil), "Dữ liệu nhập vào không hợp lệ"},
		{"500", newStatusError(500, nil), "Lỗi máy chủ"},
		{"503", newStatusError(503, nil), "Đã có lỗi xảy ra"},
		{"network", &Error{Kind: KindNetwork, Err: errors.New("timeout")}, "Không thể kết nối đến máy chủ. Vui lòng kiểm tra kết nối mạng."},
		{"plain", errors.New("Payment URL not provided"), "Payment URL not provided"},
	}
	for _, tc := range cases {
		if got := Message(tc.err); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
	if Message(nil) != "" {
		t.Fatal("nil error has no message")
	}
}

func TestStatusErrorKinds(t *testing.T) {
	cases := map[int]Kind{
		401: KindUnauthorized,
		403: KindForbidden,
		404: KindNotFound,
		422: KindValidation,
		500: KindServer,
		502: KindServer,
		400: KindOther,
		429: KindOther,
	}
	for status, want := range cases {
		if got := newStatusError(status, nil).Kind; got != want {
			t.Fatalf("status %d: got %s want %s", status, got, want)
		}
	}

	issues := newStatusError(422, []byte(`{"detail":[{"loc":["body","items",1,"quantity"],"msg":"must be >= 1"}]}`)).Issues
	if len(issues) != 1 || issues[0].Field != "quantity" || issues[0].Message != "must be >= 1" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestAsPlatformError(t *testing.T) {
	cases := []struct {
		err  error
		code pkgerrors.Code
	}{
		{&Error{Kind: KindNetwork}, pkgerrors.CodeUpstreamUnavailable},
		{newStatusError(401, nil), pkgerrors.CodeUnauthorized},
		{newStatusError(403, nil), pkgerrors.CodeForbidden},
		{newStatusError(404, nil), pkgerrors.CodeNotFound},
		{newStatusError(422, nil), pkgerrors.CodeValidation},
		{newStatusError(500, nil), pkgerrors.CodeUpstream},
		{newStatusError(400, nil), pkgerrors.CodeValidation},
		{newStatusError(409, nil), pkgerrors.CodeConflict},
		{newStatusError(429, nil), pkgerrors.CodeRateLimit},
		{newStatusError(418, nil), pkgerrors.CodeUpstream},
		{errors.New("boom"), pkgerrors.CodeInternal},
	}
	for _, tc := range cases {
		if got := AsPlatformError(tc.err).Code(); got != tc.code {
			t.Fatalf("%v: got %s want %s", tc.err, got, tc.code)
		}
	}

	typed := AsPlatformError(newStatusError(http.StatusUnprocessableEntity, []byte(`{"detail":[{"loc":["body","rating"],"msg":"le 5"}]}`)))
	if typed.Message() != "rating: le 5" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || len(details["issues"].([]Issue)) != 1 {
		t.Fatalf("expected issues in details, got %#v", typed.Details())
	}

	existing := pkgerrors.New(pkgerrors.CodeStateConflict, "cart busy")
	if AsPlatformError(existing) != existing {
		t.Fatal("typed errors pass through")
	}
	if AsPlatformError(nil) != nil {
		t.Fatal("nil passes through")
	}
}
