package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/internal/browser"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

const msgRateLimited = "Bạn thao tác quá nhanh. Vui lòng thử lại sau."

type rateLimiterStore interface {
	CountHit(context.Context, string, time.Duration) (int64, error)
}

// RateLimitPolicy defines the fixed-window throttling for one traffic surface.
// Each limit is counted separately; a zero limit disables that counter.
type RateLimitPolicy struct {
	name            string
	window          time.Duration
	ipLimit         int
	identifierLimit int
	deviceLimit     int
}

// NewRateLimitPolicy builds a policy counting per client IP and per login
// identifier taken from the JSON body.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, identifierLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:            strings.ToLower(strings.TrimSpace(name)),
		window:          window,
		ipLimit:         ipLimit,
		identifierLimit: identifierLimit,
	}
}

// NewDeviceRateLimitPolicy builds a policy counting per browser device.
func NewDeviceRateLimitPolicy(name string, window time.Duration, deviceLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:        strings.ToLower(strings.TrimSpace(name)),
		window:      window,
		deviceLimit: deviceLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.identifierLimit > 0 || p.deviceLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

func (p RateLimitPolicy) key(scope, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", scope, p.normalizedName(), value)
}

// RateLimit enforces the policy's counters before calling next.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			check := func(scope, value string, limit int) bool {
				if limit <= 0 {
					return true
				}
				key := policy.key(scope, value)
				if key == "" {
					return true
				}
				allowed, count, err := allow(ctx, store, key, policy.window, int64(limit))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return false
				}
				if !allowed {
					respondRateLimited(ctx, logg, w, policy, scope, value, count, limit)
					return false
				}
				return true
			}

			if !check("ip", clientIP(r), policy.ipLimit) {
				return
			}

			if policy.deviceLimit > 0 {
				deviceID := ""
				if b := browser.FromContext(ctx); b != nil {
					deviceID = b.DeviceID
				}
				if !check("device", deviceID, policy.deviceLimit) {
					return
				}
			}

			if policy.identifierLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if identifier := normalizeIdentifier(extractIdentifier(body)); identifier != "" {
					if !check("identifier", hashValue(identifier), policy.identifierLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store rateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.CountHit(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, scope, value string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		// identifiers are already hashed; ips and device ids are logged as-is
		fields[scope] = value
		logCtx := logg.WithFields(ctx, fields)
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msgRateLimited))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// extractIdentifier reads the login identifier, or the email on registration.
func extractIdentifier(payload []byte) string {
	var body struct {
		UsernameOrEmail string `json:"username_or_email"`
		Email           string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.UsernameOrEmail != "" {
		return body.UsernameOrEmail
	}
	return body.Email
}

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
