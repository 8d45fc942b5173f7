// ABOUTME: Session store holding the authenticated user and status enum
// ABOUTME: State changes only through defined transitions: login, logout, fetch, register, verify

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

// Status tracks the lifecycle of the most recent session action.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Store holds the authenticated-user state. All mutation goes through the
// transition methods; readers get snapshots.
type Store struct {
	client *api.Client
	flag   api.PresenceFlag

	mu            sync.Mutex
	status        Status
	authenticated bool
	user          *api.User
	lastErr       error
}

// NewStore creates a store wired to the API client and presence flag.
func NewStore(client *api.Client, flag api.PresenceFlag) *Store {
	return &Store{
		client: client,
		flag:   flag,
		status: StatusIdle,
	}
}

// Login exchanges credentials for a session and loads the user identity.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.setLoading()

	if err := s.client.Login(ctx, username, password); err != nil {
		s.failAuth(err)
		return err
	}
	user, err := s.client.Me(ctx)
	if err != nil {
		s.failAuth(err)
		return err
	}

	s.markPresent()
	s.succeed(user)
	return nil
}

// Register creates an account. Success never grants a session: the user must
// verify their email or log in separately.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	s.setLoading()

	if err := s.client.Register(ctx, username, email, password); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.status = StatusSucceeded
	s.mu.Unlock()
	return nil
}

// FetchCurrentUser loads the identity of the current session. It is also the
// silent-restoration path, so a failure is recorded but unexceptional.
func (s *Store) FetchCurrentUser(ctx context.Context) error {
	s.setLoading()

	user, err := s.client.Me(ctx)
	if err != nil {
		s.failAuth(err)
		return err
	}

	s.markPresent()
	s.succeed(user)
	return nil
}

// Logout ends the session. It is always locally successful: even when the
// backend is unreachable, local state and the presence flag are cleared so
// the user is never stranded in an authenticated-looking state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		slog.Debug("logout request failed, clearing local session anyway", "error", err)
	}
	if err := s.flag.Clear(); err != nil {
		slog.Warn("failed to clear session presence flag", "error", err)
	}

	s.mu.Lock()
	s.status = StatusIdle
	s.authenticated = false
	s.user = nil
	s.lastErr = nil
	s.mu.Unlock()
}

// VerifyEmail confirms the emailed token. Success doubles as a first login:
// the backend sets session cookies and the identity is loaded.
func (s *Store) VerifyEmail(ctx context.Context, token string) error {
	s.setLoading()

	if err := s.client.VerifyEmail(ctx, token); err != nil {
		s.failAuth(err)
		return err
	}
	user, err := s.client.Me(ctx)
	if err != nil {
		s.failAuth(err)
		return err
	}

	s.markPresent()
	s.succeed(user)
	return nil
}

// Restore is the startup bootstrap: when the presence flag is set it silently
// re-establishes the session, otherwise it makes no network call at all.
// It reports whether the user ended up authenticated.
func (s *Store) Restore(ctx context.Context) bool {
	if !s.flag.Active() {
		return false
	}
	if err := s.FetchCurrentUser(ctx); err != nil {
		// Expected when the session expired; the refresh coordinator has
		// already cleaned up. Best-effort restoration stays silent.
		slog.Debug("session restoration failed", "error", err)
		return false
	}
	return true
}

// Status returns the current transition status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Authenticated reports whether a user identity is established.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// User returns a copy of the authenticated user, or nil.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Err returns the error recorded by the last failed transition, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) setLoading() {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastErr = nil
	s.mu.Unlock()
}

// fail records a non-auth failure (e.g. registration) without touching the
// established identity.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.lastErr = err
	s.mu.Unlock()
}

// failAuth records a terminal authentication failure and clears the identity.
func (s *Store) failAuth(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.lastErr = err
	s.authenticated = false
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) succeed(user *api.User) {
	s.mu.Lock()
	s.status = StatusSucceeded
	s.authenticated = true
	s.user = user
	s.mu.Unlock()
}

// markPresent sets the durable presence flag after a successful credential
// exchange. A write failure only costs silent restoration on the next run.
func (s *Store) markPresent() {
	if err := s.flag.Set(); err != nil {
		slog.Warn("failed to persist session presence flag", "error", err)
	}
}
