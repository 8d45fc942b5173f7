// ABOUTME: Shared test fixtures for command tests
// ABOUTME: Fake backend server and CLI environment setup

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testUsername = "alice"
	testPassword = "hunter2secret"
	testSession  = "sess-token-1"
)

// startBackend runs a fake SmartWalletFX backend covering the endpoints the
// commands exercise. Auth is a single session cookie; refresh always fails
// so expired-session paths terminate deterministically.
func startBackend(t *testing.T) *httptest.Server {
	t.Helper()

	authed := func(r *http.Request) bool {
		c, err := r.Cookie("access_token")
		return err == nil && c.Value == testSession
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	grantSession := func(w http.ResponseWriter) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: testSession, Path: "/", HttpOnly: true})
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad form"})
			return
		}
		if r.PostForm.Get("username") != testUsername || r.PostForm.Get("password") != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
			return
		}
		grantSession(w)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh token expired"})
	})

	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "u-1", "username": testUsername, "email": "alice@example.com",
			"email_verified": true, "base_currency": "USD",
		})
	})

	mux.HandleFunc("PUT /users/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
			return
		}
		var update map[string]string
		json.NewDecoder(r.Body).Decode(&update)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "u-1", "username": testUsername, "email": "alice@example.com",
			"email_verified": true,
			"display_name":   update["display_name"],
			"base_currency":  update["base_currency"],
		})
	})

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "taken" {
			writeJSON(w, http.StatusConflict, map[string]string{"detail": "username already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": "u-2"})
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "good-token" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid or expired token"})
			return
		}
		grantSession(w)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("POST /auth/resend-verification", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("POST /auth/password-reset-request", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("POST /auth/password-reset-complete", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "good-token" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	mux.HandleFunc("GET /wallets", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "w-1", "name": "Main", "currency": "USD", "balance": 1250.50, "asset_count": 3},
			{"id": "w-2", "name": "Savings", "currency": "EUR", "balance": 800.00, "asset_count": 1},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// setupCLI points the commands at the given backend with a throwaway state
// directory, restoring the global flags afterwards.
func setupCLI(t *testing.T, serverURL string) {
	t.Helper()
	t.Setenv("SMARTWALLET_STATE_DIR", t.TempDir())
	t.Setenv("SMARTWALLET_API_URL", "")
	t.Setenv("SMARTWALLET_TIMEOUT", "")
	apiURL = serverURL
	t.Cleanup(func() {
		apiURL = ""
		jsonOutput = false
	})
}
