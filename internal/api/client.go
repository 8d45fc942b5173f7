// ABOUTME: HTTP client for the SmartWalletFX backend API
// ABOUTME: Sends cookie-authenticated requests and exposes typed endpoint methods

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PresenceFlag is the durable "a session was previously established" signal.
// It is necessary but not sufficient for being authenticated: when set, a 401
// is worth a silent refresh attempt; when absent, a 401 means "never logged in".
type PresenceFlag interface {
	Active() bool
	Set() error
	Clear() error
}

// Options configures optional client behavior.
type Options struct {
	// HTTPClient to use; nil means a default client with a 30s timeout.
	// Its cookie jar is replaced by Jar (or an in-memory jar).
	HTTPClient *http.Client
	// Jar holds session cookies; nil means a fresh in-memory jar.
	Jar http.CookieJar
	// OnSessionExpired is called exactly once per terminal refresh failure,
	// after local session state has been cleared. The application shell
	// decides what "go to the login surface" means.
	OnSessionExpired func(error)
}

// Client is the API client for the SmartWalletFX backend. All requests carry
// the session cookies from the jar; a 401 on a protected endpoint triggers a
// single-flight silent refresh followed by exactly one retry.
type Client struct {
	baseURL string
	http    *http.Client
	flag    PresenceFlag
	timeout time.Duration

	refreshGroup singleflight.Group

	mu        sync.Mutex
	onExpired func(error)
}

// New creates a client bound to baseURL. flag must not be nil.
func New(baseURL string, flag PresenceFlag, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Jar != nil {
		hc.Jar = opts.Jar
	} else if hc.Jar == nil {
		jar, _ := newMemoryJar()
		hc.Jar = jar
	}

	timeout := hc.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      hc,
		flag:      flag,
		timeout:   timeout,
		onExpired: opts.OnSessionExpired,
	}
}

// SetSessionExpiredHandler replaces the session-expired callback. Useful when
// the subscriber (e.g. a running TUI program) is constructed after the client.
func (c *Client) SetSessionExpiredHandler(fn func(error)) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// User is the authenticated user identity returned by the backend.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	BaseCurrency  string `json:"base_currency,omitempty"`
}

// Wallet is a tracked wallet as returned by the backend.
type Wallet struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Currency   string  `json:"currency"`
	Balance    float64 `json:"balance"`
	AssetCount int     `json:"asset_count"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	DisplayName  string `json:"display_name,omitempty"`
	BaseCurrency string `json:"base_currency,omitempty"`
}

// request is a replayable outgoing request: the body is kept as data, not a
// consumed reader, so the refresh path can retry it.
type request struct {
	method string
	path   string
	json   any        // JSON-encoded body, nil if none
	form   url.Values // form-encoded body, nil if none
}

// send performs a single round trip, reapplying jar cookies each time.
func (c *Client) send(ctx context.Context, req *request) (*http.Response, error) {
	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.json != nil:
		data, err := json.Marshal(req.json)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, c.baseURL, err)
	}
	slog.Debug("api request", "method", req.method, "path", req.path, "status", resp.StatusCode)
	return resp, nil
}

// do sends a request and routes 401s through the refresh coordinator.
// See refresh.go for the coordination rules.
func (c *Client) do(ctx context.Context, req *request) (*http.Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(req.path) {
		return resp, nil
	}

	if c.flag == nil || !c.flag.Active() {
		// Never-authenticated caller hitting a protected endpoint: drop any
		// stale cookies and let the 401 surface as-is.
		c.clearCredentials()
		return resp, nil
	}

	if err := c.refreshSession(); err != nil {
		// Terminal: the coordinator already cleared local state and notified
		// the shell. The original 401 propagates to the caller.
		return resp, nil
	}

	// Refresh succeeded: retry the original request exactly once, with the
	// rotated cookies the jar picked up from the refresh response.
	drain(resp)
	return c.send(ctx, req)
}

// expect closes resp unless it has one of the wanted statuses, converting
// anything else to a structured error.
func expect(resp *http.Response, want ...int) error {
	for _, s := range want {
		if resp.StatusCode == s {
			return nil
		}
	}
	defer resp.Body.Close()
	return responseError(resp)
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// Login exchanges credentials for session cookies (POST /auth/token).
// It does not fetch the user identity; callers follow up with Me.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/token", form: form})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Me returns the current user identity (GET /users/me).
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/users/me"})
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var user User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("invalid response from backend: user identity missing id")
	}
	return &user, nil
}

// Register creates an account (POST /auth/register). Registration alone
// never grants a session.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/register", json: body})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusCreated, http.StatusOK); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Logout invalidates the server-side session (POST /auth/logout).
// Callers treat failures as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/logout"})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK, http.StatusNoContent); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// VerifyEmail confirms an email address (POST /auth/verify-email). On
// success the backend sets session cookies, so verification doubles as a
// first login.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/verify-email", json: map[string]string{"token": token}})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// ResendVerification requests a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/resend-verification", json: map[string]string{"email": email}})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK, http.StatusAccepted, http.StatusNoContent); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// RequestPasswordReset starts the forgot-password flow.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/password-reset-request", json: map[string]string{"email": email}})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK, http.StatusAccepted, http.StatusNoContent); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// CompletePasswordReset finishes the forgot-password flow with the emailed token.
func (c *Client) CompletePasswordReset(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/auth/password-reset-complete", json: body})
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusOK, http.StatusNoContent); err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Wallets lists the user's tracked wallets (GET /wallets).
func (c *Client) Wallets(ctx context.Context) ([]Wallet, error) {
	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/wallets"})
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var wallets []Wallet
	if err := decodeJSON(resp, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// UpdateProfile updates the current user's profile (PUT /users/me).
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	resp, err := c.do(ctx, &request{method: http.MethodPut, path: "/users/me", json: update})
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var user User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
