// Package session holds the authenticated user's bearer token and email.
// Login and Logout are the only mutators besides the 401 expiry path; every
// change is persisted to client storage and broadcast to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/storage"
)

// ErrEmptyToken is returned when Login is called without a token.
var ErrEmptyToken = errors.New("session token cannot be empty")

// Store is the persistence used by the session.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetAll(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Session is the process-wide auth state.
type Session struct {
	store     Store
	navigator nav.Navigator
	subs      map[int]func(authenticated bool)
	token     string
	email     string
	nextSub   int
	mu        sync.RWMutex
}

// New creates an empty session. navigator may be nil when no view needs to
// follow session changes.
func New(store Store, navigator nav.Navigator) *Session {
	return &Session{
		store:     store,
		navigator: navigator,
		subs:      make(map[int]func(bool)),
	}
}

// Load populates the session from client storage.
func (s *Session) Load(ctx context.Context) error {
	token, _, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to load session token: %w", err)
	}
	email, _, err := s.store.Get(ctx, storage.KeyUserEmail)
	if err != nil {
		return fmt.Errorf("failed to load session email: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()

	slog.Debug("Session loaded", "authenticated", token != "", "email", email)
	s.broadcast(token != "")
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Email returns the logged-in user's email.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login stores the token and email, persists them and navigates to the main
// view.
func (s *Session) Login(ctx context.Context, token, email string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.SetAll(ctx, map[string]string{
		storage.KeyAuthToken: token,
		storage.KeyUserEmail: email,
	}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.email = email
	s.mu.Unlock()

	slog.Info("Logged in", "email", email)
	s.broadcast(true)
	s.navigate(nav.To(nav.Main))
	return nil
}

// Logout clears the session and storage and navigates to the login view.
func (s *Session) Logout(ctx context.Context) error {
	err := s.clear(ctx)
	slog.Info("Logged out")
	s.navigate(nav.To(nav.Login))
	return err
}

// Expire is the unauthorized-response path: the stored credentials are
// dropped and the login view is shown. The stored token is removed even
// when the request that got the 401 was canceled meanwhile.
func (s *Session) Expire(ctx context.Context) {
	if err := s.clear(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("Failed to clear expired session", "error", err)
	}
	slog.Warn("Session expired")
	s.navigate(nav.To(nav.Login))
}

// Subscribe registers fn for authentication changes and returns a function
// removing it.
func (s *Session) Subscribe(fn func(authenticated bool)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.email = ""
	s.mu.Unlock()

	s.broadcast(false)

	if err := s.store.Delete(ctx, storage.KeyAuthToken, storage.KeyUserEmail); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

func (s *Session) broadcast(authenticated bool) {
	s.mu.RLock()
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(authenticated)
	}
}

func (s *Session) navigate(route nav.Route) {
	if s.navigator != nil {
		s.navigator.Navigate(route)
	}
}
