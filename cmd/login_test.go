// ABOUTME: Tests for the login command
// ABOUTME: Verifies exit codes, output, and persisted session state

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLoginCommand_Success(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, testUsername, testPassword)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d\noutput: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Signed in as alice")) {
		t.Errorf("expected sign-in confirmation, got: %s", buf.String())
	}
}

func TestLoginCommand_SessionSurvivesAcrossCommands(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, testUsername, testPassword); code != 0 {
		t.Fatalf("login failed: %s", buf.String())
	}

	// A later command builds a fresh client from the same state dir and must
	// find the persisted session.
	buf.Reset()
	if code := runWhoami(context.Background(), &buf); code != 0 {
		t.Fatalf("expected whoami to succeed after login, got exit %d\noutput: %s", code, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("alice")) {
		t.Errorf("expected username in whoami output, got: %s", buf.String())
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, testUsername, "wrong")

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("invalid credentials")) {
		t.Errorf("expected server rejection message, got: %s", buf.String())
	}
}

func TestLoginCommand_ConnectionError(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)
	server.Close()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, testUsername, testPassword)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestLoginCommand_JSONOutput(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, testUsername, testPassword); code != 0 {
		t.Fatalf("login failed: %s", buf.String())
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if parsed["username"] != testUsername {
		t.Errorf("expected username %q, got %v", testUsername, parsed["username"])
	}
}
