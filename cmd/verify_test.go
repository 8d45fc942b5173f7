// ABOUTME: Tests for the email verification commands
// ABOUTME: Verifies token handling and that verification starts a session

package cmd

import (
	"bytes"
	"context"
	"testing"
)

func TestVerifyEmailCommand_Success(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runVerifyEmail(context.Background(), &buf, "good-token")

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d\noutput: %s", exitCode, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Signed in as alice")) {
		t.Errorf("expected sign-in confirmation, got: %s", buf.String())
	}

	// Verification doubles as a first login.
	buf.Reset()
	if code := runWhoami(context.Background(), &buf); code != 0 {
		t.Errorf("expected whoami to succeed after verification, got exit %d\noutput: %s", code, buf.String())
	}
}

func TestVerifyEmailCommand_BadToken(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	exitCode := runVerifyEmail(context.Background(), &buf, "stale-token")

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !bytes.Contains(buf.Bytes(), []byte("invalid or expired")) {
		t.Errorf("expected rejection message, got: %s", buf.String())
	}

	// A rejected token must not leave a session behind.
	buf.Reset()
	if code := runWhoami(context.Background(), &buf); code != 1 {
		t.Errorf("expected whoami to report not signed in, got exit %d", code)
	}
}

func TestResendVerificationCommand(t *testing.T) {
	server := startBackend(t)
	setupCLI(t, server.URL)

	var buf bytes.Buffer
	if code := runResendVerification(context.Background(), &buf, "alice@example.com"); code != 0 {
		t.Fatalf("expected exit code 0, got %d\noutput: %s", code, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("alice@example.com")) {
		t.Errorf("expected email in confirmation, got: %s", buf.String())
	}
}
