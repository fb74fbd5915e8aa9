package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/pkg/money"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// Session storage keys owned by the chat widget.
const (
	SessionKey  = "chatbot_session_id"
	MessagesKey = "chatbot_messages"
	TypingKey   = "chatbot_typing"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Kind tells the widget how to render a bot message.
type Kind string

const (
	KindText    Kind = "text"
	KindProduct Kind = "product"
	KindOrder   Kind = "order"
)

// Product is an assistant product card with its display price resolved.
type Product struct {
	types.ChatbotProduct
	DisplayPrice string `json:"display_price"`
	DetailPath   string `json:"detail_path,omitempty"`
}

// Message is one transcript entry.
type Message struct {
	ID          string                `json:"id"`
	Type        Sender                `json:"type"`
	Content     string                `json:"content"`
	Timestamp   time.Time             `json:"timestamp"`
	MessageType Kind                  `json:"messageType,omitempty"`
	Products    []Product             `json:"products,omitempty"`
	Orders      []types.ChatbotOrder  `json:"orders,omitempty"`
	Profile     *types.ChatbotProfile `json:"profile,omitempty"`
}

// Transcript is what the widget renders.
type Transcript struct {
	SessionID    string        `json:"session_id"`
	Messages     []Message     `json:"messages"`
	QuickActions []QuickAction `json:"quick_actions"`
	Error        string        `json:"error,omitempty"`
}

func loadMessages(ctx context.Context, b *browser.Browser) ([]Message, error) {
	raw, ok, err := b.Session().GetItem(ctx, MessagesKey)
	if err != nil {
		return nil, fmt.Errorf("loading chat transcript: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, nil
	}
	return messages, nil
}

func saveMessages(ctx context.Context, b *browser.Browser, messages []Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encoding chat transcript: %w", err)
	}
	if err := b.Session().SetItem(ctx, MessagesKey, string(raw)); err != nil {
		return fmt.Errorf("saving chat transcript: %w", err)
	}
	return nil
}

func messageID(prefix string, at time.Time) string {
	return prefix + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

func toProducts(in []types.ChatbotProduct) []Product {
	if len(in) == 0 {
		return nil
	}
	out := make([]Product, 0, len(in))
	for _, p := range in {
		card := Product{ChatbotProduct: p, DisplayPrice: money.FormatVND(p.Price)}
		if p.PriceText != nil && *p.PriceText != "" {
			card.DisplayPrice = *p.PriceText
		}
		if id, ok := catalogID(p); ok {
			card.DetailPath = "/products/" + strconv.FormatInt(id, 10)
		}
		out = append(out, card)
	}
	return out
}

// catalogID returns the storefront product id behind an assistant card.
func catalogID(p types.ChatbotProduct) (int64, bool) {
	if p.ProductID == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(*p.ProductID), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
