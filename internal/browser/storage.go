package browser

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
)

// Storage is one browser storage area. Missing keys read as ("", false, nil).
type Storage struct {
	store clientstate.Store
	scope string
	ttl   time.Duration
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.store.Get(ctx, s.scope, key)
	if errors.Is(err, clientstate.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem writes the value with the area's default TTL.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.scope, key, value, s.ttl)
}

// SetItemTTL writes the value with an explicit TTL, capped at the area's TTL.
func (s *Storage) SetItemTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 || (s.ttl > 0 && ttl > s.ttl) {
		ttl = s.ttl
	}
	return s.store.Set(ctx, s.scope, key, value, ttl)
}

func (s *Storage) RemoveItem(ctx context.Context, keys ...string) error {
	return s.store.Delete(ctx, s.scope, keys...)
}

// Scope returns the clientstate scope backing this area.
func (s *Storage) Scope() string { return s.scope }
