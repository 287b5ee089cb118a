package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// SessionGate tracks the active session and its privilege flag, and decides
// which operations may run. Persistence goes through the injected store.
type SessionGate struct {
	auth  port.Authenticator
	store port.SessionStore

	mu      sync.RWMutex
	session domain.Session
}

func NewSessionGate(auth port.Authenticator, store port.SessionStore) *SessionGate {
	return &SessionGate{auth: auth, store: store}
}

// Restore loads a stored session and treats it as active without asking the
// server. It reports whether a session was restored.
func (g *SessionGate) Restore(ctx context.Context) (bool, error) {
	s, err := g.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if !s.Active() {
		return false, nil
	}

	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
	return true, nil
}

func (g *SessionGate) Login(ctx context.Context, email, password string) error {
	s, err := g.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if s.Email == "" {
		s.Email = email
	}
	if err := g.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
	return nil
}

// Register creates an account. It does not log in.
func (g *SessionGate) Register(ctx context.Context, email, password string) (int64, error) {
	return g.auth.Register(ctx, email, password)
}

// End forgets the session in memory and in the store.
func (g *SessionGate) End(ctx context.Context) error {
	g.mu.Lock()
	g.session = domain.Session{}
	g.mu.Unlock()

	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (g *SessionGate) Session() domain.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

func (g *SessionGate) Active() bool {
	return g.Session().Active()
}

func (g *SessionGate) Privileged() bool {
	s := g.Session()
	return s.Active() && s.IsAdmin
}

func (g *SessionGate) Token() string {
	return g.Session().Token
}

// Authorize returns the token for an operation, or why it may not run.
func (g *SessionGate) Authorize(privileged bool) (string, error) {
	s := g.Session()
	if !s.Active() {
		return "", ErrNotLoggedIn
	}
	if privileged && !s.IsAdmin {
		return "", domain.ErrForbidden
	}
	return s.Token, nil
}
