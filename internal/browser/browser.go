// Package browser models the visiting browser: its identity cookies, the two
// storage areas it owns on the server, and any navigation a flow requested.
package browser

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
)

var mobileUA = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// Browser is the per-request view of one visitor.
type Browser struct {
	DeviceID  string
	SessionID string
	Path      string
	Query     url.Values
	UserAgent string
	Origin    string

	durable   *Storage
	session   *Storage
	navigator *Navigator
}

// TTLs configures how long each storage area keeps values.
type TTLs struct {
	Device  time.Duration
	Session time.Duration
}

// New binds a browser identity to its storage areas.
func New(deviceID, sessionID string, store clientstate.Store, ttls TTLs) *Browser {
	return &Browser{
		DeviceID:  deviceID,
		SessionID: sessionID,
		Query:     url.Values{},
		durable:   &Storage{store: store, scope: "device:" + deviceID, ttl: ttls.Device},
		session:   &Storage{store: store, scope: "session:" + sessionID, ttl: ttls.Session},
		navigator: &Navigator{},
	}
}

// IsMobile reports whether the user agent belongs to a phone or tablet.
func (b *Browser) IsMobile() bool {
	return b != nil && mobileUA.MatchString(b.UserAgent)
}

// Durable is the storage area that survives browser restarts.
func (b *Browser) Durable() *Storage { return b.durable }

// Session is the storage area cleared when the browser session ends.
func (b *Browser) Session() *Storage { return b.session }

// Navigator collects the location a flow wants the browser to visit next.
func (b *Browser) Navigator() *Navigator { return b.navigator }

// OnPath reports whether the current page path contains segment.
func (b *Browser) OnPath(segment string) bool {
	return b != nil && strings.Contains(b.Path, segment)
}

// URL joins the browser origin with path.
func (b *Browser) URL(path string) string {
	return strings.TrimRight(b.Origin, "/") + path
}

type ctxKey struct{}

// WithBrowser stores the browser on the context.
func WithBrowser(ctx context.Context, b *Browser) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the browser for the request, or nil outside the browser middleware.
func FromContext(ctx context.Context) *Browser {
	if ctx == nil {
		return nil
	}
	b, _ := ctx.Value(ctxKey{}).(*Browser)
	return b
}
