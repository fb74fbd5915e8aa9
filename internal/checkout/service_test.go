package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
	"github.com/angelmondragon/greengrocer-web/internal/events"
	"github.com/angelmondragon/greengrocer-web/internal/orders"
	"github.com/angelmondragon/greengrocer-web/internal/payments"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore logs every write so tests can assert side-effect ordering.
type recordingStore struct {
	*clientstate.MemoryStore
	mu     sync.Mutex
	writes []string
}

func (r *recordingStore) Set(ctx context.Context, scope, key, value string, ttl time.Duration) error {
	r.mu.Lock()
	r.writes = append(r.writes, key+"="+value)
	r.mu.Unlock()
	return r.MemoryStore.Set(ctx, scope, key, value, ttl)
}

func (r *recordingStore) indexOf(pred func(string) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.writes {
		if pred(w) {
			return i
		}
	}
	return -1
}

type stubOrders struct {
	inputs []orders.CreateInput
	err    error
	onCall func()
}

func (s *stubOrders) Create(_ context.Context, input orders.CreateInput) (*types.Order, error) {
	s.inputs = append(s.inputs, input)
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.Order{ID: 501, OrderNumber: "ORD-501", Status: enums.OrderStatusPending}, nil
}

type stubPayments struct {
	initReqs  []types.InitPaymentRequest
	initResp  *types.InitPaymentResponse
	initErr   error
	onInit    func()
	status    *types.PaymentStatus
	statusErr error
	statusIDs []int64
	polls     []time.Duration
}

func (s *stubPayments) Init(_ context.Context, req types.InitPaymentRequest) (*types.InitPaymentResponse, error) {
	s.initReqs = append(s.initReqs, req)
	if s.onInit != nil {
		s.onInit()
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.initResp, nil
}

func (s *stubPayments) Status(_ context.Context, id int64) (*types.PaymentStatus, error) {
	s.statusIDs = append(s.statusIDs, id)
	return s.status, s.statusErr
}

func (s *stubPayments) CheckWithRetry(ctx context.Context, id int64, maxRetries int, delay time.Duration) (*types.PaymentStatus, error) {
	for i := 0; i < maxRetries; i++ {
		s.polls = append(s.polls, delay)
	}
	return s.Status(ctx, id)
}

func (s *stubPayments) History(context.Context, payments.HistoryFilter) (*types.PaymentHistory, error) {
	return &types.PaymentHistory{Page: 1, Limit: 20, Payments: []types.PaymentHistoryItem{}}, nil
}

type recordedEvents struct {
	events []events.Event
}

func (r *recordedEvents) Emit(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

type fixture struct {
	store    *recordingStore
	browser  *browser.Browser
	carts    *cart.Store
	orders   *stubOrders
	payments *stubPayments
	events   *recordedEvents
	svc      *Service
}

func newFixture(t *testing.T, restore bool) *fixture {
	t.Helper()
	store := &recordingStore{MemoryStore: clientstate.NewMemoryStore()}
	b := browser.New("dev-1", "sess-1", store, browser.TTLs{Device: time.Hour, Session: time.Hour})
	b.Origin = "https://shop.example"
	f := &fixture{
		store:    store,
		browser:  b,
		carts:    cart.NewStore(b.Durable(), cart.NewLocker()),
		orders:   &stubOrders{},
		payments: &stubPayments{},
		events:   &recordedEvents{},
	}
	svc, err := NewService(ServiceParams{
		Orders:               f.orders,
		Payments:             f.payments,
		Events:               f.events,
		RestoreCartOnFailure: restore,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, &types.Product{ID: 1, Title: "Rau cai", CurrentPrice: decimal.NewFromInt(15000)}, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, &types.Product{ID: 2, Title: "Ca rot", CurrentPrice: decimal.NewFromInt(12000)}, 1)
	require.NoError(t, err)
}

func (f *fixture) cartLen(t *testing.T) int {
	t.Helper()
	c, err := f.carts.Load(context.Background())
	require.NoError(t, err)
	return c.Len()
}

func validForm(method enums.PaymentMethod) Form {
	return Form{
		CustomerName:    "Nguyen Van A",
		CustomerPhone:   "0901234567",
		ShippingAddress: "12 Nguyen Hue, Quan 1, TP HCM",
		PaymentMethod:   method,
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitCashOnDelivery(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.payments.initResp = &types.InitPaymentResponse{Success: true, PaymentID: 77}

	res, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodCOD))
	require.NoError(t, err)

	require.Len(t, f.orders.inputs, 1)
	assert.Equal(t, []orders.ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, f.orders.inputs[0].Items)
	assert.Equal(t, PhaseOrderPlaced, res.State)
	assert.Equal(t, OrdersPath, res.RedirectTo)
	assert.Nil(t, res.PaymentRedirect)
	assert.Equal(t, OrdersPath, f.browser.Navigator().Location())
	assert.Equal(t, 0, f.cartLen(t))
	require.Len(t, f.payments.initReqs, 1)
	assert.Equal(t, enums.PaymentMethodCOD, f.payments.initReqs[0].PaymentMethod)
}

func TestSubmitOnlineOrdering(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.payments.initResp = &types.InitPaymentResponse{Success: true, PaymentID: 88, PaymentURL: strPtr("https://gw.example/pay/88")}

	var phaseAtInit Phase
	var cartLenAtInit int
	f.payments.onInit = func() {
		st, _ := loadState(context.Background(), f.browser)
		phaseAtInit = st.Phase
		cartLenAtInit = f.cartLen(t)
	}

	res, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodVNPay))
	require.NoError(t, err)

	assert.Equal(t, PhaseRedirecting, phaseAtInit)
	assert.Equal(t, 0, cartLenAtInit)

	redirecting := f.store.indexOf(func(w string) bool {
		return strings.HasPrefix(w, StateKey+"=") && strings.Contains(w, `"redirecting"`)
	})
	cleared := f.store.indexOf(func(w string) bool {
		return strings.HasPrefix(w, cart.StorageKey+"=") && strings.Contains(w, `"items":[]`)
	})
	require.GreaterOrEqual(t, redirecting, 0)
	require.GreaterOrEqual(t, cleared, 0)
	assert.Less(t, redirecting, cleared)

	req := f.payments.initReqs[0]
	assert.Equal(t, "https://shop.example/payment/result", req.ReturnURL)
	assert.Equal(t, "https://shop.example/payment/cancel", req.CancelURL)
	assert.Equal(t, int64(501), req.OrderID)

	assert.Equal(t, PhaseRedirecting, res.State)
	require.NotNil(t, res.PaymentRedirect)
	assert.Equal(t, "https://gw.example/pay/88", res.PaymentRedirect.FirstHop())
	assert.Equal(t, int64(100), res.PaymentRedirect.DelayMS)
	assert.Equal(t, PaymentRedirectPath, f.browser.Navigator().Location())

	id, ok, _ := f.browser.Session().GetItem(context.Background(), PaymentIDKey)
	assert.True(t, ok)
	assert.Equal(t, "88", id)
	plan, err := PendingRedirect(context.Background(), f.browser)
	require.NoError(t, err)
	assert.Equal(t, res.PaymentRedirect, plan)

	redirect, err := f.svc.Guard(context.Background(), f.browser, &cart.Cart{})
	require.NoError(t, err)
	assert.Empty(t, redirect, "guard must not fire while redirecting")

	require.Len(t, f.events.events, 2)
	assert.Equal(t, events.TypeOrderPlaced, f.events.events[0].Type)
	assert.Equal(t, events.TypePaymentRedirected, f.events.events[1].Type)
}

func TestSubmitMomoDeepLinkOnMobile(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.browser.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	f.payments.initResp = &types.InitPaymentResponse{
		Success:    true,
		PaymentID:  9,
		PaymentURL: strPtr("https://momo.example/web"),
		DeepLink:   strPtr("momo://pay?id=9"),
	}

	res, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodMoMo))
	require.NoError(t, err)
	assert.True(t, res.PaymentRedirect.UseDeepLink)
	assert.Equal(t, "momo://pay?id=9", res.PaymentRedirect.FirstHop())
	assert.Equal(t, int64(2000), res.PaymentRedirect.FallbackAfterMS)
}

func TestSubmitDeepLinkIgnoredOnDesktop(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	f.payments.initResp = &types.InitPaymentResponse{
		Success:    true,
		PaymentURL: strPtr("https://momo.example/web"),
		DeepLink:   strPtr("momo://pay"),
	}

	res, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodMoMo))
	require.NoError(t, err)
	assert.False(t, res.PaymentRedirect.UseDeepLink)
}

func TestSubmitMissingPaymentURLFailsWithoutRestore(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.payments.initResp = &types.InitPaymentResponse{Success: true, PaymentID: 3}

	_, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodStripe))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUpstream, typed.Code())
	assert.Equal(t, "Payment URL not provided", typed.Message())

	st, _ := loadState(context.Background(), f.browser)
	assert.False(t, st.Phase.InFlight())
	assert.Equal(t, "Payment URL not provided", st.Error)
	assert.Equal(t, 0, f.cartLen(t), "cart stays cleared unless restore is enabled")

	redirect, _ := f.svc.Guard(context.Background(), f.browser, &cart.Cart{})
	assert.Equal(t, CartPath, redirect)
}

func TestSubmitInitFailureRestoresCartWhenEnabled(t *testing.T) {
	f := newFixture(t, true)
	f.fillCart(t)
	f.payments.initErr = &backend.Error{Kind: backend.KindServer, Status: 500}

	_, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodZaloPay))
	require.Error(t, err)
	assert.Equal(t, 2, f.cartLen(t))
	assert.Equal(t, "Lỗi máy chủ", backend.Message(err))
}

func TestSubmitOrderFailureKeepsCart(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)
	f.orders.err = &backend.Error{Kind: backend.KindValidation, Status: 422, Issues: []backend.Issue{{Field: "shipping_address", Message: "too short"}}}

	_, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodMoMo))
	require.Error(t, err)
	assert.Equal(t, 2, f.cartLen(t))
	assert.Empty(t, f.payments.initReqs)
	assert.Equal(t, "shipping_address: too short", backend.Message(err))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, false)
	f.fillCart(t)

	form := validForm(enums.PaymentMethodCOD)
	form.CustomerPhone = "09012abc45"
	form.ShippingAddress = "ngan"
	form.CustomerEmail = "khong-hop-le"
	_, err := f.svc.Submit(context.Background(), f.browser, f.carts, form)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details := typed.Details().(map[string]string)
	assert.Equal(t, "Số điện thoại không hợp lệ", details["customer_phone"])
	assert.Equal(t, "Địa chỉ phải có ít nhất 10 ký tự", details["shipping_address"])
	assert.Equal(t, "Email không hợp lệ", details["customer_email"])

	form = validForm(enums.PaymentMethodCOD)
	form.CustomerPhone = "0901"
	_, err = f.svc.Submit(context.Background(), f.browser, f.carts, form)
	details = pkgerrors.As(err).Details().(map[string]string)
	assert.Equal(t, "Số điện thoại phải có ít nhất 10 số", details["customer_phone"])

	assert.Empty(t, f.orders.inputs)
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Submit(context.Background(), f.browser, f.carts, validForm(enums.PaymentMethodCOD))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.orders.inputs)
}

func TestGuardAndPrepare(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	view, err := f.svc.Prepare(ctx, f.browser, &cart.Cart{}, nil)
	require.NoError(t, err)
	assert.Equal(t, CartPath, view.RedirectTo)
	assert.Equal(t, CartPath, f.browser.Navigator().Location())

	require.NoError(t, saveState(ctx, f.browser, State{Phase: PhaseCreatingOrder}))
	redirect, err := f.svc.Guard(ctx, f.browser, &cart.Cart{})
	require.NoError(t, err)
	assert.Empty(t, redirect)

	f.fillCart(t)
	c, _ := f.carts.Load(ctx)
	user := &types.User{Email: "a@example.com", Phone: strPtr("0909000111")}
	view, err = f.svc.Prepare(ctx, f.browser, c, user)
	require.NoError(t, err)
	assert.Empty(t, view.RedirectTo)
	assert.Equal(t, "0909000111", view.Form.CustomerPhone)
	assert.Equal(t, "42000", view.TotalPrice)
	assert.Len(t, view.Methods, 5)
}

func newSession(t *testing.T, f *fixture, token string) *auth.Session {
	t.Helper()
	s := auth.NewSession(f.browser.Durable())
	require.NoError(t, s.SetToken(context.Background(), token))
	return s
}

func TestResolveResultOutcomes(t *testing.T) {
	cases := []struct {
		status  enums.PaymentStatus
		want    Outcome
		cleared bool
	}{
		{enums.PaymentStatusPaid, OutcomeConfirmed, true},
		{enums.PaymentStatusFailed, OutcomeFailed, false},
		{enums.PaymentStatusPending, OutcomePending, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t, false)
			ctx := context.Background()
			require.NoError(t, f.browser.Session().SetItem(ctx, PaymentIDKey, "88"))
			require.NoError(t, f.browser.Session().SetItem(ctx, OrderIDKey, "501"))
			f.payments.status = &types.PaymentStatus{PaymentID: 88, OrderID: 501, Status: tc.status}

			view, err := f.svc.ResolveResult(ctx, f.browser, newSession(t, f, "tok"), "12")
			require.NoError(t, err)
			assert.Equal(t, tc.want, view.Outcome)
			assert.Equal(t, []int64{88}, f.payments.statusIDs, "session id wins over the URL")

			_, stillThere, _ := f.browser.Session().GetItem(ctx, PaymentIDKey)
			assert.Equal(t, !tc.cleared, stillThere)
			_, orderThere, _ := f.browser.Session().GetItem(ctx, OrderIDKey)
			assert.Equal(t, !tc.cleared, orderThere)
		})
	}
}

func TestResolveResultSettlesRedirectingPhase(t *testing.T) {
	for _, status := range []enums.PaymentStatus{enums.PaymentStatusFailed, enums.PaymentStatusPending} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, false)
			ctx := context.Background()
			f.fillCart(t)
			f.payments.initResp = &types.InitPaymentResponse{Success: true, PaymentID: 88, PaymentURL: strPtr("https://gw.example/pay/88")}

			_, err := f.svc.Submit(ctx, f.browser, f.carts, validForm(enums.PaymentMethodVNPay))
			require.NoError(t, err)

			f.payments.status = &types.PaymentStatus{PaymentID: 88, OrderID: 501, Status: status}
			view, err := f.svc.ResolveResult(ctx, f.browser, newSession(t, f, "tok"), "")
			require.NoError(t, err)
			assert.NotEqual(t, OutcomeConfirmed, view.Outcome)

			st, err := loadState(ctx, f.browser)
			require.NoError(t, err)
			assert.Equal(t, PhaseIdle, st.Phase)

			redirect, err := f.svc.Guard(ctx, f.browser, &cart.Cart{})
			require.NoError(t, err)
			assert.Equal(t, CartPath, redirect)

			plan, err := PendingRedirect(ctx, f.browser)
			require.NoError(t, err)
			assert.Nil(t, plan, "the gateway hop must not replay")

			id, ok, _ := f.browser.Session().GetItem(ctx, PaymentIDKey)
			assert.True(t, ok)
			assert.Equal(t, "88", id)

			_, err = f.svc.ResolveResult(ctx, f.browser, newSession(t, f, "tok"), "")
			require.NoError(t, err)
			assert.Equal(t, []int64{88, 88}, f.payments.statusIDs)
		})
	}
}

func TestResolveResultWithoutToken(t *testing.T) {
	f := newFixture(t, false)
	view, err := f.svc.ResolveResult(context.Background(), f.browser, auth.NewSession(f.browser.Durable()), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSessionExpired, view.Outcome)
	assert.Equal(t, "/auth/login?redirect=/payment/result&payment_id=42", view.RedirectTo)
	assert.Equal(t, 3000, view.RedirectAfterMS)
	assert.Empty(t, f.payments.statusIDs)
}

func TestResolveResultErrors(t *testing.T) {
	f := newFixture(t, false)
	f.payments.statusErr = &backend.Error{Kind: backend.KindUnauthorized, Status: 401}
	view, err := f.svc.ResolveResult(context.Background(), f.browser, newSession(t, f, "tok"), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSessionExpired, view.Outcome)

	f.payments.statusErr = errors.New("connection reset")
	view, err = f.svc.ResolveResult(context.Background(), f.browser, newSession(t, f, "tok"), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, view.Outcome)
	assert.NotEmpty(t, view.Message)
}

func TestAwaitResultPollsWithConfiguredBounds(t *testing.T) {
	f := newFixture(t, false)
	svc, err := NewService(ServiceParams{
		Orders:           f.orders,
		Payments:         f.payments,
		StatusRetries:    3,
		StatusRetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	f.payments.statusErr = payments.ErrStatusTimeout
	view, err := svc.AwaitResult(context.Background(), f.browser, newSession(t, f, "tok"), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, view.Outcome, "running out of retries is still pending")
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}, f.payments.polls)

	f.payments.statusErr = nil
	f.payments.status = &types.PaymentStatus{PaymentID: 42, Status: enums.PaymentStatusPaid}
	view, err = svc.AwaitResult(context.Background(), f.browser, newSession(t, f, "tok"), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, view.Outcome)
}

func TestResolveResultWithoutPaymentID(t *testing.T) {
	f := newFixture(t, false)
	view, err := f.svc.ResolveResult(context.Background(), f.browser, newSession(t, f, "tok"), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMissing, view.Outcome)
	assert.Equal(t, HomePath, f.browser.Navigator().Location())
}

func TestCancelClearsHandOff(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	require.NoError(t, f.browser.Session().SetItem(ctx, PaymentIDKey, "88"))
	require.NoError(t, f.browser.Session().SetItem(ctx, OrderIDKey, "501"))

	view, err := f.svc.Cancel(ctx, f.browser)
	require.NoError(t, err)
	assert.Equal(t, int64(501), view.OrderID)
	_, ok, _ := f.browser.Session().GetItem(ctx, PaymentIDKey)
	assert.False(t, ok)
}
