package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/greengrocer-web/internal/browser"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// Locker serializes cart mutations per device so that rapid updates apply in
// call order.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key and returns its release func.
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// Store is the cart bound to one browser's durable storage.
type Store struct {
	storage *browser.Storage
	locker  *Locker
}

func NewStore(storage *browser.Storage, locker *Locker) *Store {
	if locker == nil {
		locker = NewLocker()
	}
	return &Store{storage: storage, locker: locker}
}

// Load reads the persisted cart. A missing entry is an empty cart.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	raw, _, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	return Decode(raw), nil
}

// Update loads the cart, applies fn, and persists the result while holding the
// device lock.
func (s *Store) Update(ctx context.Context, fn func(*Cart)) (*Cart, error) {
	unlock := s.locker.Lock(s.storage.Scope())
	defer unlock()

	c, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) AddItem(ctx context.Context, product *types.Product, quantity int) (*Cart, error) {
	return s.Update(ctx, func(c *Cart) { c.AddItem(product, quantity) })
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) (*Cart, error) {
	return s.Update(ctx, func(c *Cart) { c.RemoveItem(productID) })
}

func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) (*Cart, error) {
	return s.Update(ctx, func(c *Cart) { c.UpdateQuantity(productID, quantity) })
}

func (s *Store) Clear(ctx context.Context) (*Cart, error) {
	return s.Update(ctx, func(c *Cart) { c.Clear() })
}

// Replace overwrites the stored cart with items.
func (s *Store) Replace(ctx context.Context, items []Item) (*Cart, error) {
	return s.Update(ctx, func(c *Cart) { *c = *New(items) })
}

func (s *Store) save(ctx context.Context, c *Cart) error {
	raw, err := Encode(c)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.storage.SetItem(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}
