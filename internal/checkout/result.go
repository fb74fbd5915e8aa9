package checkout

import (
	"context"
	"strconv"
	"strings"

	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/events"
	"github.com/angelmondragon/greengrocer-web/internal/payments"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// Outcome is what the payment result page shows.
type Outcome string

const (
	OutcomeConfirmed      Outcome = "confirmed"
	OutcomeFailed         Outcome = "failed"
	OutcomePending        Outcome = "pending"
	OutcomeSessionExpired Outcome = "session_expired"
	OutcomeMissing        Outcome = "missing"
)

// LoginRedirectDelayMS is how long the expiry notice shows before the login page.
const LoginRedirectDelayMS = 3000

const (
	msgSessionExpired = "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại để xem kết quả thanh toán."
	msgPaymentFailed  = "Đã có lỗi xảy ra trong quá trình thanh toán"
	msgPending        = `Nếu bạn đã thanh toán thành công trên cổng thanh toán, đơn hàng sẽ được cập nhật trong vài phút. Bạn có thể kiểm tra trong mục "Đơn hàng của tôi".`
	msgCancelled      = "Bạn đã hủy giao dịch thanh toán. Đơn hàng của bạn vẫn được giữ trong hệ thống."
)

// ResultView is the payment result page model.
type ResultView struct {
	Outcome         Outcome              `json:"outcome"`
	PaymentID       int64                `json:"payment_id,omitempty"`
	Payment         *types.PaymentStatus `json:"payment,omitempty"`
	Message         string               `json:"message,omitempty"`
	RedirectTo      string               `json:"redirect_to,omitempty"`
	RedirectAfterMS int                  `json:"redirect_after_ms,omitempty"`
}

// ResolveResult checks the payment once. The id comes from session storage
// first and the URL second; a 401 means the session expired, and any other
// error leaves the payment pending.
func (s *Service) ResolveResult(ctx context.Context, b *browser.Browser, session *auth.Session, urlPaymentID string) (*ResultView, error) {
	return s.resolve(ctx, b, session, urlPaymentID, s.payments.Status)
}

// AwaitResult is ResolveResult for callers willing to wait: the status is
// polled until it leaves pending or the retries run out, which reads as pending.
func (s *Service) AwaitResult(ctx context.Context, b *browser.Browser, session *auth.Session, urlPaymentID string) (*ResultView, error) {
	return s.resolve(ctx, b, session, urlPaymentID, func(ctx context.Context, id int64) (*types.PaymentStatus, error) {
		return s.payments.CheckWithRetry(ctx, id, s.statusRetries, s.statusDelay)
	})
}

type statusCheck func(ctx context.Context, paymentID int64) (*types.PaymentStatus, error)

func (s *Service) resolve(ctx context.Context, b *browser.Browser, session *auth.Session, urlPaymentID string, check statusCheck) (*ResultView, error) {
	paymentID, ok, err := s.paymentIDFor(ctx, b, urlPaymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		b.Navigator().Push(HomePath)
		return &ResultView{Outcome: OutcomeMissing, RedirectTo: HomePath}, nil
	}

	token, err := session.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		view := expired(paymentID)
		view.RedirectAfterMS = LoginRedirectDelayMS
		if err := s.settleHandOff(ctx, b); err != nil {
			return nil, err
		}
		s.recordResult(ctx, b, view, nil)
		return view, nil
	}

	status, err := check(ctx, paymentID)
	if err != nil {
		var view *ResultView
		if backend.IsUnauthorized(err) {
			view = expired(paymentID)
		} else {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "payment_id", paymentID), "payment.status_check_failed")
			}
			view = &ResultView{Outcome: OutcomePending, PaymentID: paymentID, Message: msgPending}
		}
		if err := s.settleHandOff(ctx, b); err != nil {
			return nil, err
		}
		s.recordResult(ctx, b, view, nil)
		return view, nil
	}

	view := &ResultView{PaymentID: paymentID, Payment: status}
	switch status.Status {
	case enums.PaymentStatusPaid:
		view.Outcome = OutcomeConfirmed
		if err := s.clearHandOff(ctx, b); err != nil {
			return nil, err
		}
	case enums.PaymentStatusFailed:
		view.Outcome = OutcomeFailed
		view.Message = msgPaymentFailed
		if status.FailedReason != nil && *status.FailedReason != "" {
			view.Message = *status.FailedReason
		}
	default:
		view.Outcome = OutcomePending
		view.Message = msgPending
	}
	if view.Outcome != OutcomeConfirmed {
		if err := s.settleHandOff(ctx, b); err != nil {
			return nil, err
		}
	}
	s.recordResult(ctx, b, view, status)
	return view, nil
}

// CancelView is shown when the shopper backs out at the gateway.
type CancelView struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id,omitempty"`
}

// Cancel forgets the hand-off bookkeeping; the order itself stays on the backend.
func (s *Service) Cancel(ctx context.Context, b *browser.Browser) (*CancelView, error) {
	view := &CancelView{Message: msgCancelled}
	if raw, ok, err := b.Session().GetItem(ctx, OrderIDKey); err != nil {
		return nil, err
	} else if ok {
		view.OrderID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if err := s.clearHandOff(ctx, b); err != nil {
		return nil, err
	}
	return view, nil
}

// History lists the shopper's payments.
func (s *Service) History(ctx context.Context, filter payments.HistoryFilter) (*types.PaymentHistory, error) {
	return s.payments.History(ctx, filter)
}

func (s *Service) paymentIDFor(ctx context.Context, b *browser.Browser, urlPaymentID string) (int64, bool, error) {
	stored, _, err := b.Session().GetItem(ctx, PaymentIDKey)
	if err != nil {
		return 0, false, err
	}
	for _, candidate := range []string{stored, urlPaymentID} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if id, err := strconv.ParseInt(candidate, 10, 64); err == nil && id > 0 {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (s *Service) clearHandOff(ctx context.Context, b *browser.Browser) error {
	return b.Session().RemoveItem(ctx, PaymentIDKey, OrderIDKey, PaymentRedirectKey, StateKey)
}

// settleHandOff returns the checkout page to idle once the shopper is back from
// the gateway. The payment and order ids stay so the result can be checked again.
func (s *Service) settleHandOff(ctx context.Context, b *browser.Browser) error {
	return b.Session().RemoveItem(ctx, PaymentRedirectKey, StateKey)
}

func (s *Service) recordResult(ctx context.Context, b *browser.Browser, view *ResultView, status *types.PaymentStatus) {
	s.metrics.IncPaymentResult(string(view.Outcome))
	event := events.Event{
		Type:      events.TypePaymentResolved,
		DeviceID:  b.DeviceID,
		PaymentID: view.PaymentID,
		Status:    string(view.Outcome),
	}
	if status != nil {
		event.OrderID = status.OrderID
		event.Method = status.PaymentMethod
	}
	s.events.Emit(ctx, event)
}

func expired(paymentID int64) *ResultView {
	return &ResultView{
		Outcome:    OutcomeSessionExpired,
		PaymentID:  paymentID,
		Message:    msgSessionExpired,
		RedirectTo: LoginRedirect(paymentID),
	}
}

// LoginRedirect builds the login URL that resumes the result check after sign-in.
func LoginRedirect(paymentID int64) string {
	return auth.LoginPath + "?redirect=" + PaymentResultPath + "&payment_id=" + strconv.FormatInt(paymentID, 10)
}
