package goGate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// TokenStore supplies the bearer token attached to outbound requests and
// performs the token exchange when the gateway rejects the current one.
// The [Client] never persists or rotates tokens itself; both concerns live
// behind this interface (see the tokenstore sub-package for implementations).
//
// AccessToken returns the current token, or "" when none is held — the
// client then sends the request without an Authorization header. Refresh
// obtains a new token from the upstream auth system and returns it; a ""
// token or an error marks the session as unrecoverable.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// TenantSource reports the tenant the application is currently acting for.
// An empty id means no tenant scope, and the tenant header is omitted.
// Per-request overrides via [WithTenantID] take precedence over this source.
type TenantSource interface {
	TenantID(ctx context.Context) string
}

// StaticTenant is a [TenantSource] pinned to a single tenant id.
type StaticTenant string

// TenantID implements [TenantSource].
func (t StaticTenant) TenantID(context.Context) string { return string(t) }

// SessionExpiredFunc is invoked exactly once per failed refresh episode,
// after every queued request has been rejected. Typical implementations
// clear local state and navigate the user to a login screen. The cause is
// the error that ended the episode.
type SessionExpiredFunc func(ctx context.Context, cause error)

// RequestOptions carries per-request overrides for [Client.Request].
// The zero value is valid. Header entries are applied after the injected
// auth/tenant/request-id headers and must not collide with them. NoRetry
// disables the single 401 retry for this request only.
type RequestOptions struct {
	Header  http.Header
	Query   url.Values
	NoRetry bool
}

// Response is the outcome of a successful gateway call (any 2xx status).
// Body holds the full response body, capped at [HTTPConfig.MaxBodyBytes].
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON response body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return fmt.Errorf("%w: empty body", ErrDecodeFailed)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return nil
}

// StatusError is returned for non-2xx gateway responses. It unwraps to the
// class sentinel for its status ([ErrUnauthorized], [ErrForbidden],
// [ErrRateLimited], or [ErrGatewayError]), so callers can branch with
// errors.Is while still reading the exact status and body.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
	RequestID  string

	class error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.RequestID != "" {
		return fmt.Sprintf("gateway responded %s (request %s)", e.Status, e.RequestID)
	}
	return fmt.Sprintf("gateway responded %s", e.Status)
}

// Unwrap returns the class sentinel for this status.
func (e *StatusError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.class
}

func newStatusError(status int, statusText string, body []byte, requestID string) *StatusError {
	return &StatusError{
		StatusCode: status,
		Status:     statusText,
		Body:       body,
		RequestID:  requestID,
		class:      statusClass(status),
	}
}

func statusClass(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrGatewayError
	}
}
