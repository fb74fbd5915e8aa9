package browser

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
	"github.com/google/uuid"
)

const (
	DeviceCookie  = "gg_device"
	SessionCookie = "gg_session"
)

// Options configures how a Browser is resolved from an HTTP request.
type Options struct {
	Store        clientstate.Store
	TTLs         TTLs
	SecureCookie bool
	PublicOrigin string
}

// FromRequest resolves (and if needed issues) the identity cookies and builds
// the Browser for r. The device cookie lives for TTLs.Device; the session cookie
// has no Max-Age so it ends with the browser session.
func FromRequest(w http.ResponseWriter, r *http.Request, opts Options) *Browser {
	deviceID := cookieID(r, DeviceCookie)
	if deviceID == "" {
		deviceID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     DeviceCookie,
			Value:    deviceID,
			Path:     "/",
			MaxAge:   int(opts.TTLs.Device / time.Second),
			HttpOnly: true,
			Secure:   opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	sessionID := cookieID(r, SessionCookie)
	if sessionID == "" {
		sessionID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}

	b := New(deviceID, sessionID, opts.Store, opts.TTLs)
	b.Path = r.URL.Path
	b.Query = r.URL.Query()
	b.UserAgent = r.UserAgent()
	b.Origin = requestOrigin(r, opts.PublicOrigin)
	return b
}

func cookieID(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func requestOrigin(r *http.Request, public string) string {
	if public = strings.TrimSpace(public); public != "" {
		return strings.TrimRight(public, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
