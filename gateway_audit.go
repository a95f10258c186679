package goGate

import (
	"context"
	"time"
)

const (
	auditEventRequest          = "request"
	auditEventRetry            = "retry"
	auditEventRefreshSuccess   = "refresh_success"
	auditEventRefreshCoalesced = "refresh_coalesced"
	auditEventProactiveRefresh = "proactive_refresh"
	auditEventSessionExpired   = "session_expired"
	auditEventForbidden        = "forbidden"
	auditEventRateLimited      = "rate_limited"
	auditEventGatewayError     = "gateway_error"
	auditEventTransportError   = "transport_error"
)

// auditOutcome records the terminal outcome of a request attempt. The
// enabled check runs before any event is built so disabled audit stays off
// the hot path entirely.
func (c *Client) auditOutcome(ctx context.Context, eventType string, a *attempt, status int, duration time.Duration, cause error) {
	if !c.auditEnabled() {
		return
	}

	event := AuditEvent{
		EventType:  eventType,
		Method:     a.method,
		Path:       a.path,
		Status:     status,
		TenantID:   a.tenantID,
		RequestID:  a.requestID,
		Success:    cause == nil,
		DurationMS: duration.Milliseconds(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	c.emitAudit(ctx, event)
}

// auditEpisode records a refresh-episode transition for the attempt that
// triggered or joined it.
func (c *Client) auditEpisode(ctx context.Context, eventType string, a *attempt, episodeID string, cause error) {
	if !c.auditEnabled() {
		return
	}

	event := AuditEvent{
		EventType: eventType,
		Method:    a.method,
		Path:      a.path,
		TenantID:  a.tenantID,
		RequestID: a.requestID,
		EpisodeID: episodeID,
		Success:   cause == nil,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	c.emitAudit(ctx, event)
}
