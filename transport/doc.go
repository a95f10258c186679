// Package transport mounts the gateway client's semantics under a stdlib
// *http.Client. The RoundTripper injects the same auth, tenant, and
// request-id headers and runs the same single-flight refresh-and-retry on
// a first 401, so code built on net/http gets the client's guarantees
// without adopting its call surface.
package transport
