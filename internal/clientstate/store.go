// Package clientstate persists per-browser key/value state on the server.
package clientstate

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("client state not found")

// Store keeps string values grouped by scope. A scope identifies one browser
// storage area, e.g. "device:<id>" or "session:<id>".
type Store interface {
	Get(ctx context.Context, scope, key string) (string, error)
	// Set writes value under key. A ttl <= 0 keeps the value until deleted.
	Set(ctx context.Context, scope, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, scope string, keys ...string) error
}
