package goGate

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGate/internal/refreshgate"
)

// Client defines a public type used by goGate APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config  Config
	baseURL *url.URL
	http    *http.Client
	tokens  TokenStore
	tenants TenantSource
	gate    *refreshgate.Gate
	audit   *auditDispatcher
	metrics *Metrics

	onSessionExpired SessionExpiredFunc

	closed atomic.Bool
}

// Config describes the config operation and its observable behavior.
//
// Config may return an error when input validation, dependency calls, or security checks fail.
// Config does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return cloneConfig(c.config)
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.Swap(true) {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// Refreshing describes the refreshing operation and its observable behavior.
//
// Refreshing may return an error when input validation, dependency calls, or security checks fail.
// Refreshing does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Refreshing() bool {
	if c == nil || c.gate == nil {
		return false
	}
	return c.gate.Refreshing()
}

// RefreshWaiters describes the refreshwaiters operation and its observable behavior.
//
// RefreshWaiters may return an error when input validation, dependency calls, or security checks fail.
// RefreshWaiters does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RefreshWaiters() int {
	if c == nil || c.gate == nil {
		return 0
	}
	return c.gate.Waiting()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

func (c *Client) auditEnabled() bool {
	return c != nil && c.audit != nil
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.audit.Emit(ctx, event)
}
