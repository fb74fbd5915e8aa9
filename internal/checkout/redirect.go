package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

const (
	// RenderDelay lets the redirect overlay paint before leaving the page.
	RenderDelay = 100 * time.Millisecond
	// DeepLinkFallback is how long the wallet app gets to open before the web URL loads.
	DeepLinkFallback = 2000 * time.Millisecond
)

// Redirect is the plan the interstitial page executes to reach the gateway.
type Redirect struct {
	Method          enums.PaymentMethod `json:"method"`
	WebURL          string              `json:"web_url"`
	DeepLink        string              `json:"deep_link,omitempty"`
	UseDeepLink     bool                `json:"use_deep_link"`
	FallbackAfterMS int64               `json:"fallback_after_ms"`
	DelayMS         int64               `json:"delay_ms"`
}

// FirstHop is where the browser goes first.
func (r Redirect) FirstHop() string {
	if r.UseDeepLink {
		return r.DeepLink
	}
	return r.WebURL
}

// planRedirect picks deep link or web URL. An empty payment URL is an error even
// when a deep link exists.
func planRedirect(b *browser.Browser, method enums.PaymentMethod, resp *types.InitPaymentResponse) (*Redirect, error) {
	if resp.PaymentURL == nil || *resp.PaymentURL == "" {
		return nil, ErrNoPaymentURL
	}
	plan := &Redirect{
		Method:          method,
		WebURL:          *resp.PaymentURL,
		FallbackAfterMS: DeepLinkFallback.Milliseconds(),
		DelayMS:         RenderDelay.Milliseconds(),
	}
	if resp.DeepLink != nil {
		plan.DeepLink = *resp.DeepLink
	}
	plan.UseDeepLink = b.IsMobile() && method.SupportsDeepLink() && plan.DeepLink != ""
	return plan, nil
}

// PendingRedirect returns the plan saved by the last successful online submit.
func PendingRedirect(ctx context.Context, b *browser.Browser) (*Redirect, error) {
	raw, ok, err := b.Session().GetItem(ctx, PaymentRedirectKey)
	if err != nil {
		return nil, fmt.Errorf("loading payment redirect: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var plan Redirect
	if err := json.Unmarshal([]byte(raw), &plan); err != nil || plan.WebURL == "" {
		return nil, nil
	}
	return &plan, nil
}

func saveRedirect(ctx context.Context, b *browser.Browser, plan *Redirect) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding payment redirect: %w", err)
	}
	return b.Session().SetItemTTL(ctx, PaymentRedirectKey, string(raw), phaseTTL)
}
