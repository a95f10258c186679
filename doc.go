// Package goGate provides an authenticated HTTP client for multi-tenant JSON
// gateways, with bearer-token injection, tenant scoping, and transparent
// single-flight token refresh on 401 responses.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
// When several in-flight requests hit an expired token at once, exactly one
// upstream refresh is issued; the rest wait on the same episode and retry with
// the token it produces.
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Client], [Builder], [Config], and
// value types (Response, StatusError, MetricsSnapshot, AuditEvent, etc.). Token
// persistence belongs to [TokenStore] implementations (see the tokenstore
// sub-package); refresh-episode coordination lives under internal/ and is
// never exported.
//
// # What this package must NOT do
//
//   - Persist, rotate, or mint tokens itself; it only asks its [TokenStore].
//   - Retry anything other than a first 401 (no 429 backoff, no 5xx retries).
//   - Expose the refresh gate, pending-waiter queue, or HTTP wiring in its
//     public API.
//
// # Performance contract
//
// Request is the hot path. With auth and tenant headers resolvable without
// I/O, a request adds one header pass and one atomic counter update over the
// underlying http.Client call. A 401 adds at most one refresh round-trip per
// failure episode regardless of concurrency.
package goGate
