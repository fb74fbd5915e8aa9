package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/greengrocer-web/internal/browser"
	pkgauth "github.com/angelmondragon/greengrocer-web/pkg/auth"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

const (
	// TokenKey and UserKey are the durable storage entries holding the identity.
	TokenKey = "access_token"
	UserKey  = "user"

	LoginPath         = "/auth/login"
	PaymentResultPath = "/payment/result"
)

// State is the identity snapshot exposed to views.
type State struct {
	User            *types.User `json:"user"`
	IsAuthenticated bool        `json:"is_authenticated"`
	IsLoading       bool        `json:"is_loading"`
}

// Session is the per-browser auth state container.
type Session struct {
	mu          sync.Mutex
	storage     *browser.Storage
	now         func() time.Time
	state       State
	initialized bool
}

// NewSession binds a session to a browser's durable storage. It starts loading
// until Initialize runs.
func NewSession(storage *browser.Storage) *Session {
	return &Session{
		storage: storage,
		now:     time.Now,
		state:   State{IsLoading: true},
	}
}

// Initialize rehydrates the user once. A corrupt stored user reads as logged out,
// and the loading flag clears whatever the outcome.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.initialized = true
	s.state.IsLoading = false

	raw, ok, err := s.storage.GetItem(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("loading stored user: %w", err)
	}
	if !ok {
		return nil
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	s.state.User = &user
	s.state.IsAuthenticated = true
	return nil
}

// State returns a copy of the current identity snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) User() *types.User {
	return s.State().User
}

func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// SetUser records the identity and persists it so later requests rehydrate it.
func (s *Session) SetUser(ctx context.Context, user *types.User) error {
	s.mu.Lock()
	s.state.User = user
	s.state.IsAuthenticated = user != nil
	s.mu.Unlock()

	if user == nil {
		return s.storage.RemoveItem(ctx, UserKey)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return s.storage.SetItem(ctx, UserKey, string(raw))
}

// SetToken persists the bearer token. The entry expires with the token's exp
// claim when one can be read; an empty token removes it.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.storage.RemoveItem(ctx, TokenKey)
	}
	ttl, _ := pkgauth.RemainingTTL(token, s.now())
	return s.storage.SetItemTTL(ctx, TokenKey, token, ttl)
}

// Token returns the stored bearer token or "".
func (s *Session) Token(ctx context.Context) (string, error) {
	token, _, err := s.storage.GetItem(ctx, TokenKey)
	return token, err
}

// Logout clears the token and identity.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.mu.Unlock()
	return s.storage.RemoveItem(ctx, TokenKey, UserKey)
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, or nil.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// TokenFromContext feeds the backend clients with the visitor's bearer token.
func TokenFromContext(ctx context.Context) (string, error) {
	if s := FromContext(ctx); s != nil {
		return s.Token(ctx)
	}
	if b := browser.FromContext(ctx); b != nil {
		return NewSession(b.Durable()).Token(ctx)
	}
	return "", nil
}

// HandleUnauthorized reacts to a backend 401: the identity is cleared and the
// browser is sent to the login page, except on the payment result view which
// recovers from expiry itself.
func HandleUnauthorized(ctx context.Context) {
	b := browser.FromContext(ctx)
	if b == nil || b.OnPath(PaymentResultPath) {
		return
	}
	s := FromContext(ctx)
	if s == nil {
		s = NewSession(b.Durable())
	}
	_ = s.Logout(ctx)
	b.Navigator().Push(LoginPath)
}
