package goGate

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the gateway client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired is an exported constant or variable used by the gateway client.
	ErrSessionExpired = errors.New("session expired")
	// ErrForbidden is an exported constant or variable used by the gateway client.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited is an exported constant or variable used by the gateway client.
	ErrRateLimited = errors.New("rate limited")
	// ErrGatewayError is an exported constant or variable used by the gateway client.
	ErrGatewayError = errors.New("gateway error")
	// ErrGatewayUnreachable is an exported constant or variable used by the gateway client.
	ErrGatewayUnreachable = errors.New("gateway unreachable")
	// ErrResponseTooLarge is an exported constant or variable used by the gateway client.
	ErrResponseTooLarge = errors.New("response body exceeds configured limit")
	// ErrDecodeFailed is an exported constant or variable used by the gateway client.
	ErrDecodeFailed = errors.New("response body decode failed")
	// ErrEncodeFailed is an exported constant or variable used by the gateway client.
	ErrEncodeFailed = errors.New("request body encode failed")
	// ErrTokenStoreUnavailable is an exported constant or variable used by the gateway client.
	ErrTokenStoreUnavailable = errors.New("token store unavailable")
	// ErrBodyNotReplayable is an exported constant or variable used by the gateway client.
	ErrBodyNotReplayable = errors.New("request body not replayable")
	// ErrInvalidMethod is an exported constant or variable used by the gateway client.
	ErrInvalidMethod = errors.New("invalid http method")
	// ErrInvalidPath is an exported constant or variable used by the gateway client.
	ErrInvalidPath = errors.New("invalid request path")
	// ErrClientNotReady is an exported constant or variable used by the gateway client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrClientClosed is an exported constant or variable used by the gateway client.
	ErrClientClosed = errors.New("client closed")
	// ErrNilTokenStore is an exported constant or variable used by the gateway client.
	ErrNilTokenStore = errors.New("nil token store")
	// ErrTenantRequired is an exported constant or variable used by the gateway client.
	ErrTenantRequired = errors.New("tenant id required")
)
