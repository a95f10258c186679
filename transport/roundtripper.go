package transport

import (
	"errors"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// RoundTripper defines a public type used by goGate APIs.
//
// RoundTripper instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoundTripper struct {
	client *goGate.Client
	base   http.RoundTripper
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(client *goGate.Client) *RoundTripper {
	return NewWithBase(client, http.DefaultTransport)
}

// NewWithBase describes the newwithbase operation and its observable behavior.
//
// NewWithBase may return an error when input validation, dependency calls, or security checks fail.
// NewWithBase does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewWithBase(client *goGate.Client, base http.RoundTripper) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RoundTripper{client: client, base: base}
}

// RoundTrip implements http.RoundTripper. A request whose body cannot be
// replayed (no GetBody) surfaces its 401 untouched; everything else gets
// exactly one refresh-and-retry round.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt == nil || rt.client == nil {
		return nil, goGate.ErrClientNotReady
	}

	first := req.Clone(req.Context())
	if err := rt.client.Authorize(first); err != nil {
		return nil, err
	}

	resp, err := rt.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if _, rerr := rt.client.RecoverAuth(req.Context()); rerr != nil {
		if errors.Is(rerr, req.Context().Err()) {
			_ = resp.Body.Close()
			return nil, rerr
		}
		// Failed episode: the original 401 is the caller's answer.
		return resp, nil
	}

	_ = resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, goGate.ErrBodyNotReplayable
		}
		retry.Body = body
	}
	if err := rt.client.Authorize(retry); err != nil {
		return nil, err
	}

	return rt.base.RoundTrip(retry)
}
