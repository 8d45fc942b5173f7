// ABOUTME: Silent session refresh coordination for the API client
// ABOUTME: Single-flight refresh on 401 with retry-once and terminal sign-out handling

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrSessionExpired reports that the session could not be silently refreshed
// and the user must sign in again.
var ErrSessionExpired = errors.New("session expired")

// Auth endpoints must fail visibly: a 401 from them is an answer, not a
// signal that the session expired.
var authPaths = map[string]bool{
	"/auth/token":    true,
	"/auth/register": true,
	"/auth/refresh":  true,
}

func isAuthPath(path string) bool {
	return authPaths[path]
}

// refreshSession performs at most one concurrent silent refresh. Requests
// that see a 401 while a refresh is already in flight wait for the shared
// result and then retry once (queue-and-retry-once policy).
//
// The refresh runs on a detached context with the client's own timeout so a
// canceled waiter cannot poison the shared result for the others.
func (c *Client) refreshSession() error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.doRefresh(ctx); err != nil {
			slog.Debug("session refresh failed", "error", err)
			c.terminateSession(err)
			return nil, err
		}
		slog.Debug("session refreshed")
		return nil, nil
	})
	return err
}

// doRefresh calls POST /auth/refresh with the current cookies. The rotated
// cookies land in the jar via the response. A 200 must carry
// {"success": true}; anything else is a terminal failure.
func (c *Client) doRefresh(ctx context.Context) error {
	resp, err := c.send(ctx, &request{method: http.MethodPost, path: "/auth/refresh"})
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected: %w", responseError(resp))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read refresh response: %w", err)
	}
	if !gjson.GetBytes(body, "success").Bool() {
		return errors.New("malformed refresh response: success field missing or false")
	}
	return nil
}

// terminateSession clears every local trace of the session and notifies the
// application shell exactly once per terminal failure. The transport layer
// never navigates anywhere itself.
func (c *Client) terminateSession(cause error) {
	if c.flag != nil {
		if err := c.flag.Clear(); err != nil {
			slog.Warn("failed to clear session presence flag", "error", err)
		}
	}
	c.clearCredentials()

	c.mu.Lock()
	fn := c.onExpired
	c.mu.Unlock()
	if fn != nil {
		fn(cause)
	}
}

// clearCredentials drops all stored cookies.
func (c *Client) clearCredentials() {
	type clearer interface{ Clear() error }
	j, ok := c.http.Jar.(clearer)
	if !ok {
		slog.Warn("cookie jar does not support clearing; stale cookies may remain")
		return
	}
	if err := j.Clear(); err != nil {
		slog.Warn("failed to clear cookie jar", "error", err)
	}
}
