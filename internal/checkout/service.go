// Package checkout turns a cart into an order and hands the shopper to the
// payment gateway, or completes cash-on-delivery orders directly.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/events"
	"github.com/angelmondragon/greengrocer-web/internal/orders"
	"github.com/angelmondragon/greengrocer-web/internal/payments"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
	"github.com/angelmondragon/greengrocer-web/pkg/validation"
)

// Storefront locations the flow navigates to.
const (
	HomePath            = "/"
	CartPath            = "/cart"
	OrdersPath          = "/orders"
	PaymentRedirectPath = "/payment/redirect"
	PaymentResultPath   = "/payment/result"
	PaymentCancelPath   = "/payment/cancel"
)

var (
	// ErrNoPaymentURL is raised when an online init returns no gateway URL.
	ErrNoPaymentURL = payments.ErrNoPaymentURL
	errEmptyCart    = pkgerrors.New(pkgerrors.CodeValidation, "Giỏ hàng trống")
	errInProgress   = pkgerrors.New(pkgerrors.CodeStateConflict, "Đơn hàng đang được xử lý")
)

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateInput) (*types.Order, error)
}

type paymentGateway interface {
	Init(ctx context.Context, req types.InitPaymentRequest) (*types.InitPaymentResponse, error)
	Status(ctx context.Context, paymentID int64) (*types.PaymentStatus, error)
	History(ctx context.Context, filter payments.HistoryFilter) (*types.PaymentHistory, error)
	CheckWithRetry(ctx context.Context, paymentID int64, maxRetries int, delay time.Duration) (*types.PaymentStatus, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, event events.Event)
}

type outcomeRecorder interface {
	IncCheckout(method, outcome string)
	IncPaymentResult(state string)
}

// ServiceParams wires the checkout flow.
type ServiceParams struct {
	Orders               orderCreator
	Payments             paymentGateway
	Events               eventEmitter
	Metrics              outcomeRecorder
	Logger               *logger.Logger
	RestoreCartOnFailure bool
	// StatusRetries and StatusRetryDelay bound AwaitResult's polling; zero
	// values fall back to the payments defaults.
	StatusRetries    int
	StatusRetryDelay time.Duration
}

type Service struct {
	orders      orderCreator
	payments    paymentGateway
	events      eventEmitter
	metrics     outcomeRecorder
	logg        *logger.Logger
	restoreCart bool
	// polling bounds for AwaitResult
	statusRetries int
	statusDelay   time.Duration
	now           func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if p.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	emitter := p.Events
	if emitter == nil {
		emitter = noopEmitter{}
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{
		orders:        p.Orders,
		payments:      p.Payments,
		events:        emitter,
		metrics:       metrics,
		logg:          p.Logger,
		restoreCart:   p.RestoreCartOnFailure,
		statusRetries: p.StatusRetries,
		statusDelay:   p.StatusRetryDelay,
		now:           time.Now,
	}, nil
}

// View is the checkout page model.
type View struct {
	Phase      Phase                 `json:"phase"`
	Error      string                `json:"error,omitempty"`
	Form       Form                  `json:"form"`
	Items      []cart.Item           `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice string                `json:"total_price"`
	Methods    []enums.PaymentMethod `json:"payment_methods"`
	RedirectTo string                `json:"redirect_to,omitempty"`
}

// Prepare builds the checkout page, sending shoppers with an empty cart back to it.
func (s *Service) Prepare(ctx context.Context, b *browser.Browser, c *cart.Cart, user *types.User) (*View, error) {
	st, err := loadState(ctx, b)
	if err != nil {
		return nil, err
	}
	view := &View{
		Phase:      st.Phase,
		Error:      st.Error,
		Form:       Prefill(user),
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice().String(),
		Methods:    enums.PaymentMethods(),
	}
	if target := guard(st, c); target != "" {
		view.RedirectTo = target
		b.Navigator().Push(target)
	}
	return view, nil
}

// Guard returns CartPath when the cart is empty and no order or payment is in
// flight, and "" otherwise.
func (s *Service) Guard(ctx context.Context, b *browser.Browser, c *cart.Cart) (string, error) {
	st, err := loadState(ctx, b)
	if err != nil {
		return "", err
	}
	return guard(st, c), nil
}

func guard(st State, c *cart.Cart) string {
	if c.IsEmpty() && !st.Phase.InFlight() {
		return CartPath
	}
	return ""
}

// Result is the outcome of a successful submit.
type Result struct {
	State           Phase        `json:"state"`
	Order           *types.Order `json:"order"`
	PaymentID       int64        `json:"payment_id,omitempty"`
	RedirectTo      string       `json:"redirect_to,omitempty"`
	PaymentRedirect *Redirect    `json:"payment_redirect,omitempty"`
}

// Submit places the order. For online methods the redirecting phase is stored
// before the cart is cleared, and the cart is cleared before the payment is
// initialized. Cash on delivery clears the cart and lands on the order list.
func (s *Service) Submit(ctx context.Context, b *browser.Browser, carts *cart.Store, form Form) (*Result, error) {
	form = form.normalize()
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}
	method := form.PaymentMethod
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"payment_method": "Phương thức thanh toán không hợp lệ"})
	}

	st, err := loadState(ctx, b)
	if err != nil {
		return nil, err
	}
	if st.Phase == PhaseCreatingOrder {
		return nil, errInProgress
	}

	current, err := carts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, errEmptyCart
	}
	snapshot := current.Items()

	if err := s.setPhase(ctx, b, State{Phase: PhaseCreatingOrder, Method: method.String()}); err != nil {
		return nil, err
	}

	order, err := s.orders.Create(ctx, orderInput(form, current.Lines()))
	if err != nil {
		return nil, s.fail(ctx, b, carts, nil, method, "order_failed", err)
	}
	s.events.Emit(ctx, events.Event{
		Type:     events.TypeOrderPlaced,
		DeviceID: b.DeviceID,
		OrderID:  order.ID,
		Method:   method.String(),
	})

	if method.IsOnline() {
		return s.redirectToGateway(ctx, b, carts, snapshot, order, method)
	}
	return s.placeCashOnDelivery(ctx, b, carts, snapshot, order, method)
}

func (s *Service) redirectToGateway(ctx context.Context, b *browser.Browser, carts *cart.Store, snapshot []cart.Item, order *types.Order, method enums.PaymentMethod) (*Result, error) {
	if err := s.setPhase(ctx, b, State{Phase: PhaseRedirecting, OrderID: order.ID, Method: method.String()}); err != nil {
		return nil, err
	}
	if _, err := carts.Clear(ctx); err != nil {
		return nil, s.fail(ctx, b, carts, nil, method, "cart_failed", err)
	}

	resp, err := s.initPayment(ctx, b, order.ID, method)
	if err != nil {
		return nil, s.fail(ctx, b, carts, snapshot, method, "init_failed", err)
	}
	plan, err := planRedirect(b, method, resp)
	if err != nil {
		return nil, s.fail(ctx, b, carts, snapshot, method, "init_failed", err)
	}
	if err := saveRedirect(ctx, b, plan); err != nil {
		return nil, s.fail(ctx, b, carts, snapshot, method, "init_failed", err)
	}

	b.Navigator().Push(PaymentRedirectPath)
	s.metrics.IncCheckout(method.String(), "redirected")
	s.events.Emit(ctx, events.Event{
		Type:      events.TypePaymentRedirected,
		DeviceID:  b.DeviceID,
		OrderID:   order.ID,
		PaymentID: resp.PaymentID,
		Method:    method.String(),
	})
	return &Result{
		State:           PhaseRedirecting,
		Order:           order,
		PaymentID:       resp.PaymentID,
		RedirectTo:      PaymentRedirectPath,
		PaymentRedirect: plan,
	}, nil
}

func (s *Service) placeCashOnDelivery(ctx context.Context, b *browser.Browser, carts *cart.Store, snapshot []cart.Item, order *types.Order, method enums.PaymentMethod) (*Result, error) {
	if _, err := carts.Clear(ctx); err != nil {
		return nil, s.fail(ctx, b, carts, nil, method, "cart_failed", err)
	}
	resp, err := s.initPayment(ctx, b, order.ID, method)
	if err != nil {
		return nil, s.fail(ctx, b, carts, snapshot, method, "init_failed", err)
	}
	if err := s.setPhase(ctx, b, State{Phase: PhaseOrderPlaced, OrderID: order.ID, Method: method.String()}); err != nil {
		return nil, err
	}

	b.Navigator().Push(OrdersPath)
	s.metrics.IncCheckout(method.String(), "placed")
	return &Result{
		State:      PhaseOrderPlaced,
		Order:      order,
		PaymentID:  resp.PaymentID,
		RedirectTo: OrdersPath,
	}, nil
}

// initPayment starts the payment and records its ids for the result page.
func (s *Service) initPayment(ctx context.Context, b *browser.Browser, orderID int64, method enums.PaymentMethod) (*types.InitPaymentResponse, error) {
	resp, err := s.payments.Init(ctx, types.InitPaymentRequest{
		OrderID:       orderID,
		PaymentMethod: method,
		ReturnURL:     b.URL(PaymentResultPath),
		CancelURL:     b.URL(PaymentCancelPath),
	})
	if err != nil {
		return nil, err
	}
	if err := b.Session().SetItem(ctx, PaymentIDKey, strconv.FormatInt(resp.PaymentID, 10)); err != nil {
		return nil, fmt.Errorf("saving payment id: %w", err)
	}
	if err := b.Session().SetItem(ctx, OrderIDKey, strconv.FormatInt(orderID, 10)); err != nil {
		return nil, fmt.Errorf("saving order id: %w", err)
	}
	return resp, nil
}

// fail drops the phase back to idle with the translated message. The cart is
// only put back when restore is enabled and a snapshot was taken.
func (s *Service) fail(ctx context.Context, b *browser.Browser, carts *cart.Store, snapshot []cart.Item, method enums.PaymentMethod, outcome string, cause error) error {
	msg := backend.Message(cause)
	if err := s.setPhase(ctx, b, State{Phase: PhaseFailed, Method: method.String(), Error: msg}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "checkout.state_reset_failed", err)
	}
	if s.restoreCart && len(snapshot) > 0 {
		if _, err := carts.Replace(ctx, snapshot); err != nil && s.logg != nil {
			s.logg.Error(ctx, "checkout.cart_restore_failed", err)
		}
	}
	s.metrics.IncCheckout(method.String(), outcome)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"method": method.String(), "outcome": outcome})
		s.logg.Warn(logCtx, "checkout.failed")
	}
	return asFlowError(cause, msg)
}

func (s *Service) setPhase(ctx context.Context, b *browser.Browser, st State) error {
	st.UpdatedAt = s.now().UTC()
	return saveState(ctx, b, st)
}

// asFlowError keeps typed errors and backend errors as they are, and gives
// gateway-level failures an upstream code.
func asFlowError(cause error, msg string) error {
	if typed := pkgerrors.As(cause); typed != nil {
		return typed
	}
	if _, ok := backend.AsError(cause); ok {
		return cause
	}
	if errors.Is(cause, payments.ErrNoPaymentURL) || errors.Is(cause, payments.ErrInitFailed) {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, cause, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, cause, msg)
}

func orderInput(form Form, lines []cart.Line) orders.CreateInput {
	items := make([]orders.ItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, orders.ItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return orders.CreateInput{
		ShippingAddress: form.ShippingAddress,
		CustomerPhone:   form.CustomerPhone,
		CustomerEmail:   form.CustomerEmail,
		CustomerName:    form.CustomerName,
		Notes:           form.Notes,
		Items:           items,
	}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, events.Event) {}

type noopRecorder struct{}

func (noopRecorder) IncCheckout(string, string) {}
func (noopRecorder) IncPaymentResult(string)    {}
