// ABOUTME: Structured error types for SmartWalletFX API failures
// ABOUTME: Classifies transport errors vs HTTP responses and extracts field-level detail

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
)

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 64 << 10

// Kind classifies how a request failed.
type Kind int

const (
	// KindHTTP means the server responded with a non-success status.
	KindHTTP Kind = iota
	// KindNetwork means no response was received at all.
	KindNetwork
	// KindTimeout means the request was given up on before a response arrived.
	KindTimeout
)

// Error is the structured failure returned by all client methods.
type Error struct {
	Kind       Kind
	Status     int               // HTTP status code, 0 for transport failures
	Message    string            // server-provided or synthesized message
	Fields     map[string]string // field-level validation detail, if the server provided it
	RetryAfter string            // rate-limit retry hint from the Retry-After header
	Err        error             // underlying transport error, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "request timed out"
	case KindNetwork:
		return e.Message
	}
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnreachable reports whether err means the server could not be reached
// (network failure or timeout), as opposed to an HTTP error response.
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind != KindHTTP
}

// transportError converts a failed round trip into a structured error.
func transportError(ctx context.Context, baseURL string, err error) *Error {
	if ctx.Err() == context.Canceled {
		return &Error{Kind: KindNetwork, Message: "request canceled", Err: err}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("cannot connect to backend at %s", baseURL),
		Err:     err,
	}
}

// responseError parses an error response body into a structured error.
// Bodies vary by endpoint, so extraction is tolerant: the first of
// "error", "message", or "detail" wins, and an optional "fields" object
// carries per-field validation messages.
func responseError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &Error{Kind: KindHTTP, Status: resp.StatusCode}

	for _, key := range []string{"error", "message", "detail"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			apiErr.Message = v.String()
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	if fields := gjson.GetBytes(body, "fields"); fields.IsObject() {
		apiErr.Fields = make(map[string]string)
		fields.ForEach(func(k, v gjson.Result) bool {
			apiErr.Fields[k.String()] = v.String()
			return true
		})
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = resp.Header.Get("Retry-After")
	}

	return apiErr
}
