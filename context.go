package goGate

import "context"

type tenantIDContextKey struct{}
type requestIDContextKey struct{}

// WithTenantID attaches a tenant identifier to ctx, overriding the
// [TenantSource] for requests issued with this context. An empty id is
// ignored; use it only to narrow, never to clear, the tenant scope.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey{}, tenantID)
}

// WithRequestID attaches a caller-chosen request id to ctx, replacing the
// generated one for requests issued with this context. Useful when the
// application already has a correlation id from an inbound request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func tenantIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	tenantID, _ := ctx.Value(tenantIDContextKey{}).(string)
	if tenantID == "" {
		return "", false
	}

	return tenantID, true
}

func requestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	if requestID == "" {
		return "", false
	}

	return requestID, true
}
