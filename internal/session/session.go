// Package session tracks the current visitor's identity and implements
// the login, registration, and logout flows.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/aparkhill/activity-enrollment-client/internal/client"
	"github.com/aparkhill/activity-enrollment-client/internal/model"
	"github.com/aparkhill/activity-enrollment-client/internal/notify"
)

// API is the slice of the server client the session layer needs.
type API interface {
	Me(ctx context.Context) (model.Session, error)
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

// Store is the explicit session cache. The server stays the source of
// truth: the store only ever holds the result of the last /me query (or
// the anonymous state forced by logout) and is re-filled before every
// gated action. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	current  model.Session
	onChange func(model.Session)
}

// NewStore constructs an anonymous Store.
func NewStore() *Store {
	return &Store{}
}

// OnChange registers the identity-indicator callback, invoked after
// every Set. The callback must not call back into the Store.
func (s *Store) OnChange(fn func(model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Current returns the cached session. Callers that are about to mutate
// server state must not trust this; they go through Manager.Refresh.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the cached session and notifies the identity indicator.
func (s *Store) Set(sess model.Session) {
	s.mu.Lock()
	s.current = sess
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(sess)
	}
}

// Manager drives the session flows and reports their outcomes on the
// shared banner.
type Manager struct {
	api    API
	store  *Store
	banner *notify.Banner
}

// NewManager constructs a Manager.
func NewManager(api API, store *Store, banner *notify.Banner) *Manager {
	return &Manager{api: api, store: store, banner: banner}
}

// Refresh queries the server for the current identity and updates the
// store. A transport failure or a non-authenticated response both mean
// anonymous; Refresh never returns an error.
func (m *Manager) Refresh(ctx context.Context) model.Session {
	sess, err := m.api.Me(ctx)
	if err != nil {
		sess = model.Session{}
	}
	m.store.Set(sess)
	return sess
}

// Login submits credentials. On success it shows the server's
// confirmation and re-queries the identity so the indicator reflects
// the new session. On rejection it shows the server's detail text, or
// "Login failed" when the server sent none.
func (m *Manager) Login(ctx context.Context, username, password string) {
	msg, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.banner.Show(failureText(err, "Login failed", "Login error."), model.KindError)
		return
	}
	m.banner.Show(msg, model.KindSuccess)
	m.Refresh(ctx)
}

// Register submits new-account data. Reporting mirrors Login, but a
// successful registration does not establish a session, so the cached
// identity is left alone.
func (m *Manager) Register(ctx context.Context, username, password string) {
	msg, err := m.api.Register(ctx, username, password)
	if err != nil {
		m.banner.Show(failureText(err, "Registration failed", "Registration error."), model.KindError)
		return
	}
	m.banner.Show(msg, model.KindSuccess)
}

// Logout requests session termination. On success the cached identity
// reverts to anonymous without another /me round trip.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.banner.Show(failureText(err, "Logout failed.", "Logout error."), model.KindError)
		return
	}
	m.banner.Show("Logged out.", model.KindSuccess)
	m.store.Set(model.Session{})
}

// failureText picks the banner text for a failed call: the server's
// detail when it sent one, the rejected fallback for a detail-less
// rejection, and the transport fallback when no response arrived.
func failureText(err error, rejected, transport string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return rejected
	}
	return transport
}
