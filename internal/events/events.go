// Package events publishes storefront lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// Type names a storefront event.
type Type string

const (
	TypeOrderPlaced       Type = "order.placed"
	TypePaymentRedirected Type = "payment.redirected"
	TypePaymentResolved   Type = "payment.resolved"
)

// EnvelopeVersion is bumped when the published payload layout changes.
const EnvelopeVersion = 1

// Event is the payload published for each storefront milestone.
type Event struct {
	Version    int       `json:"version"`
	EventID    string    `json:"event_id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	DeviceID   string    `json:"device_id,omitempty"`
	OrderID    int64     `json:"order_id,omitempty"`
	PaymentID  int64     `json:"payment_id,omitempty"`
	Method     string    `json:"method,omitempty"`
	Status     string    `json:"status,omitempty"`
}

// Publisher delivers an event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder publishes events on behalf of shopper-facing flows. Failures are
// logged and never returned.
type Recorder struct {
	pub  Publisher
	logg *logger.Logger
	now  func() time.Time
}

func NewRecorder(pub Publisher, logg *logger.Logger) *Recorder {
	if pub == nil {
		pub = Noop{}
	}
	return &Recorder{pub: pub, logg: logg, now: time.Now}
}

// Emit stamps the event and publishes it.
func (r *Recorder) Emit(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	if err := r.pub.Publish(ctx, event); err != nil && r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"event_type": string(event.Type),
			"order_id":   event.OrderID,
			"payment_id": event.PaymentID,
		})
		r.logg.Error(logCtx, "storefront event publish failed", err)
	}
}
