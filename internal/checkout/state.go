package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/browser"
)

// Phase is the checkout page's position in the order/payment hand-off.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseCreatingOrder Phase = "creating_order"
	PhaseRedirecting   Phase = "redirecting"
	PhaseOrderPlaced   Phase = "order_placed"
	// PhaseFailed is idle with the last error attached; the next submit clears it.
	PhaseFailed Phase = "failed"
)

// InFlight reports whether the phase must keep the empty-cart guard from firing.
func (p Phase) InFlight() bool {
	return p == PhaseCreatingOrder || p == PhaseRedirecting
}

// Session storage keys written during the hand-off.
const (
	StateKey           = "checkout_state"
	PaymentIDKey       = "payment_id"
	OrderIDKey         = "order_id"
	PaymentRedirectKey = "payment_redirect"
)

// phaseTTL bounds how long a phase survives once its page is gone.
const phaseTTL = 10 * time.Minute

// State is the persisted checkout phase.
type State struct {
	Phase     Phase     `json:"phase"`
	OrderID   int64     `json:"order_id,omitempty"`
	Method    string    `json:"method,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func loadState(ctx context.Context, b *browser.Browser) (State, error) {
	raw, ok, err := b.Session().GetItem(ctx, StateKey)
	if err != nil {
		return State{}, fmt.Errorf("loading checkout state: %w", err)
	}
	var st State
	if !ok || json.Unmarshal([]byte(raw), &st) != nil || st.Phase == "" {
		return State{Phase: PhaseIdle}, nil
	}
	return st, nil
}

func saveState(ctx context.Context, b *browser.Browser, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding checkout state: %w", err)
	}
	if err := b.Session().SetItemTTL(ctx, StateKey, string(raw), phaseTTL); err != nil {
		return fmt.Errorf("saving checkout state: %w", err)
	}
	return nil
}
