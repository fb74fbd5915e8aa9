// Package chat runs the shopping-assistant conversation for one browser
// session against the chatbot service.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// typingTTL releases a send guard left behind by a request that never finished.
const typingTTL = 60 * time.Second

const (
	welcomeID   = "welcome"
	welcomeText = "Xin chào! Tôi là chatbot của Bach Hoa Xanh. Tôi có thể giúp bạn:\n\n• Tìm kiếm sản phẩm\n• Xem đơn hàng\n• Tư vấn mua sắm\n• Hỗ trợ thanh toán\n\nBạn cần hỗ trợ gì hôm nay?"

	msgNotUnderstood = "Xin lỗi, tôi không hiểu câu hỏi của bạn."
	msgUnavailable   = "Không thể kết nối với chatbot. Vui lòng thử lại sau."

	msgSendDefault      = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau."
	msgSendUnauthorized = "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại."
	msgSendRateLimited  = "Bạn đã gửi quá nhiều tin nhắn. Vui lòng đợi một chút rồi thử lại."
	msgSendServer       = "Server đang gặp sự cố. Vui lòng thử lại sau."
	msgSendNetwork      = "Không thể kết nối với server. Vui lòng kiểm tra kết nối internet."
)

var (
	errEmptyMessage = pkgerrors.New(pkgerrors.CodeValidation, "Vui lòng nhập tin nhắn")
	errBusy         = pkgerrors.New(pkgerrors.CodeStateConflict, "Chatbot đang trả lời tin nhắn trước")
	errNotInCatalog = pkgerrors.New(pkgerrors.CodeValidation, "Sản phẩm không có trong cửa hàng")
)

type apiClient interface {
	Post(ctx context.Context, path string, body, out any) error
}

type sendRecorder interface {
	IncChatSend(outcome string)
}

// ServiceParams wires the chat flow.
type ServiceParams struct {
	API     apiClient
	Metrics sendRecorder
	Logger  *logger.Logger
	// Locker guards the typing flag; sharing the cart locker is fine since keys differ.
	Locker *cart.Locker
}

type Service struct {
	api     apiClient
	metrics sendRecorder
	logg    *logger.Logger
	locker  *cart.Locker
	now     func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.API == nil {
		return nil, fmt.Errorf("chatbot client required")
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	locker := p.Locker
	if locker == nil {
		locker = cart.NewLocker()
	}
	return &Service{
		api:     p.API,
		metrics: metrics,
		logg:    p.Logger,
		locker:  locker,
		now:     time.Now,
	}, nil
}

type sessionPayload struct {
	UserID int64 `json:"user_id,omitempty"`
}

type messagePayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	UserID    int64  `json:"user_id,omitempty"`
}

// EnsureSession reuses the stored chat session or opens one tagged with the
// user. An empty transcript is seeded with the welcome message.
func (s *Service) EnsureSession(ctx context.Context, b *browser.Browser, user *types.User) (*Transcript, error) {
	sessionID, ok, err := b.Session().GetItem(ctx, SessionKey)
	if err != nil {
		return nil, err
	}
	if !ok || sessionID == "" {
		var created types.ChatSession
		if err := s.api.Post(ctx, "/chatbot/session", sessionPayload{UserID: userID(user)}, &created); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "chat.session_create_failed", err)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamUnavailable, err, msgUnavailable)
		}
		sessionID = created.SessionID
		if err := b.Session().SetItem(ctx, SessionKey, sessionID); err != nil {
			return nil, fmt.Errorf("saving chat session: %w", err)
		}
	}

	messages, err := loadMessages(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		messages = []Message{s.welcome()}
		if err := saveMessages(ctx, b, messages); err != nil {
			return nil, err
		}
	}
	return &Transcript{
		SessionID:    sessionID,
		Messages:     messages,
		QuickActions: QuickActions(messages, user != nil),
	}, nil
}

// Current returns the stored transcript without contacting the chatbot.
func (s *Service) Current(ctx context.Context, b *browser.Browser, authenticated bool) (*Transcript, error) {
	sessionID, _, err := b.Session().GetItem(ctx, SessionKey)
	if err != nil {
		return nil, err
	}
	messages, err := loadMessages(ctx, b)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []Message{}
	}
	return &Transcript{
		SessionID:    sessionID,
		Messages:     messages,
		QuickActions: QuickActions(messages, authenticated),
	}, nil
}

// SendMessage appends the shopper's text and the assistant's answer. Send
// failures never escape: they become an assistant message and Transcript.Error.
func (s *Service) SendMessage(ctx context.Context, b *browser.Browser, user *types.User, text string) (*Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmptyMessage
	}
	release, err := s.acquireTyping(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	transcript, err := s.EnsureSession(ctx, b, user)
	if err != nil {
		return nil, err
	}

	messages := append(transcript.Messages, Message{
		ID:        messageID("user", s.now()),
		Type:      SenderUser,
		Content:   text,
		Timestamp: s.now().UTC(),
	})
	if err := saveMessages(ctx, b, messages); err != nil {
		return nil, err
	}

	var resp types.ChatResponse
	sendErr := s.api.Post(ctx, "/chatbot/message", messagePayload{
		SessionID: transcript.SessionID,
		Message:   text,
		UserID:    userID(user),
	}, &resp)

	var reply Message
	if sendErr != nil {
		outcome, content := sendFailure(sendErr)
		s.metrics.IncChatSend(outcome)
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "outcome", outcome), "chat.send_failed")
		}
		reply = Message{ID: messageID("error", s.now()), Type: SenderBot, Content: content, Timestamp: s.now().UTC()}
		transcript.Error = content
	} else {
		s.metrics.IncChatSend("ok")
		reply = s.botMessage(resp)
	}

	messages = append(messages, reply)
	if err := saveMessages(ctx, b, messages); err != nil {
		return nil, err
	}
	transcript.Messages = messages
	transcript.QuickActions = QuickActions(messages, user != nil)
	return transcript, nil
}

// ResetSession forgets the conversation and starts over.
func (s *Service) ResetSession(ctx context.Context, b *browser.Browser, user *types.User) (*Transcript, error) {
	if err := b.Session().RemoveItem(ctx, SessionKey, MessagesKey, TypingKey); err != nil {
		return nil, err
	}
	return s.EnsureSession(ctx, b, user)
}

// AddToCart puts one unit of an assistant product card into the cart.
func (s *Service) AddToCart(ctx context.Context, carts *cart.Store, card types.ChatbotProduct) (*cart.Cart, error) {
	id, ok := catalogID(card)
	if !ok {
		return nil, errNotInCatalog
	}
	product := &types.Product{
		ID:           id,
		Title:        card.ProductName,
		ProductName:  card.ProductName,
		CurrentPrice: card.Price,
		ImageURL:     card.ImageURL,
	}
	if card.ProductCode != nil {
		product.ProductCode = *card.ProductCode
	}
	if card.Unit != nil {
		product.Unit = *card.Unit
	}
	if card.PriceText != nil {
		product.CurrentPriceText = *card.PriceText
	}
	return carts.AddItem(ctx, product, 1)
}

// acquireTyping sets the per-session typing flag, refusing a second send while
// one is in flight.
func (s *Service) acquireTyping(ctx context.Context, b *browser.Browser) (func(), error) {
	unlock := s.locker.Lock(b.Session().Scope() + ":" + TypingKey)
	defer unlock()

	if _, busy, err := b.Session().GetItem(ctx, TypingKey); err != nil {
		return nil, err
	} else if busy {
		return nil, errBusy
	}
	if err := b.Session().SetItemTTL(ctx, TypingKey, "1", typingTTL); err != nil {
		return nil, err
	}
	return func() {
		if err := b.Session().RemoveItem(context.WithoutCancel(ctx), TypingKey); err != nil && s.logg != nil {
			s.logg.Error(ctx, "chat.typing_release_failed", err)
		}
	}, nil
}

func (s *Service) welcome() Message {
	return Message{ID: welcomeID, Type: SenderBot, Content: welcomeText, Timestamp: s.now().UTC()}
}

// botMessage renders a reply; reply text wins, then a product or order count.
func (s *Service) botMessage(resp types.ChatResponse) Message {
	msg := Message{
		ID:          messageID("bot", s.now()),
		Type:        SenderBot,
		Content:     resp.Reply,
		Timestamp:   s.now().UTC(),
		MessageType: KindText,
		Profile:     resp.Context.Profile,
	}
	if n := len(resp.Context.Products); n > 0 {
		msg.Products = toProducts(resp.Context.Products)
		msg.MessageType = KindProduct
		if resp.Reply == "" {
			msg.Content = fmt.Sprintf("Tôi tìm thấy %d sản phẩm cho bạn:", n)
		}
	}
	if n := len(resp.Context.Orders); n > 0 {
		msg.Orders = resp.Context.Orders
		msg.MessageType = KindOrder
		if resp.Reply == "" {
			msg.Content = fmt.Sprintf("Bạn có %d đơn hàng:", n)
		}
	}
	if msg.Content == "" {
		msg.Content = msgNotUnderstood
	}
	return msg
}

// sendFailure maps a failed send to a metrics outcome and the canned reply.
func sendFailure(err error) (string, string) {
	apiErr, ok := backend.AsError(err)
	if !ok || apiErr.Kind == backend.KindNetwork {
		return "network", msgSendNetwork
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return "unauthorized", msgSendUnauthorized
	case apiErr.Status == http.StatusTooManyRequests:
		return "rate_limited", msgSendRateLimited
	case apiErr.Status >= 500:
		return "server_error", msgSendServer
	default:
		return "error", msgSendDefault
	}
}

func userID(user *types.User) int64 {
	if user == nil {
		return 0
	}
	return user.ID
}

type noopRecorder struct{}

func (noopRecorder) IncChatSend(string) {}
