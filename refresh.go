package goGate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goGate/jwt"
)

// refreshToken joins or leads the refresh episode for a failed attempt.
// The episode leader owns every failure side effect: the session-expired
// handler fires once per episode, never once per queued caller.
func (c *Client) refreshToken(ctx context.Context, a *attempt) (string, error) {
	start := time.Now()

	result, err := c.gate.Do(ctx, func(rctx context.Context) (string, error) {
		return c.tokens.Refresh(rctx)
	})

	if result.Joined {
		c.metricInc(MetricRefreshCoalesced)
		c.auditEpisode(ctx, auditEventRefreshCoalesced, a, result.EpisodeID, err)
	}

	if err != nil {
		// A caller whose own context died while parked keeps its context
		// error; the episode it abandoned settles on its own terms.
		if result.Joined && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return "", err
		}

		if !result.Joined {
			c.metricInc(MetricRefreshFailure)
			c.metricInc(MetricSessionExpired)
			c.auditEpisode(ctx, auditEventSessionExpired, a, result.EpisodeID, err)
			if c.onSessionExpired != nil {
				c.onSessionExpired(ctx, err)
			}
		}
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if !result.Joined {
		c.metricInc(MetricRefreshSuccess)
		c.metricObserve(MetricRefreshLatency, time.Since(start))
		c.auditEpisode(ctx, auditEventRefreshSuccess, a, result.EpisodeID, nil)
	}

	return result.Token, nil
}

// maybeProactiveRefresh refreshes ahead of a request when the stored token
// is a JWT inside the configured expiry skew. Opaque tokens are skipped;
// only the 401 path can recover those.
func (c *Client) maybeProactiveRefresh(ctx context.Context, a *attempt, token string) (string, bool, error) {
	skew := c.config.Auth.RefreshSkew
	if skew <= 0 || token == "" {
		return "", false, nil
	}

	ttl, err := jwt.TimeToLive(token, time.Now())
	if err != nil || ttl > skew {
		return "", false, nil
	}

	c.metricInc(MetricProactiveRefresh)
	c.auditEpisode(ctx, auditEventProactiveRefresh, a, "", nil)

	fresh, err := c.refreshToken(ctx, a)
	if err != nil {
		return "", false, err
	}
	return fresh, true, nil
}

// Authorize injects the client's auth, tenant, and request-id headers into
// an externally built request. Used by the transport sub-package; it never
// touches the request body.
func (c *Client) Authorize(req *http.Request) error {
	if c == nil || c.tokens == nil {
		return ErrClientNotReady
	}
	if c.closed.Load() {
		return ErrClientClosed
	}
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidPath)
	}

	ctx := req.Context()

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	if token != "" {
		req.Header.Set("Authorization", c.config.Auth.Scheme+" "+token)
	}

	if tenantID := c.resolveTenant(ctx); tenantID != "" {
		req.Header.Set(c.config.Tenant.Header, tenantID)
	} else if c.config.Tenant.Require {
		return ErrTenantRequired
	}

	if c.config.HTTP.EmitRequestIDs {
		if req.Header.Get(c.config.HTTP.RequestIDHeader) == "" {
			req.Header.Set(c.config.HTTP.RequestIDHeader, c.resolveRequestID(ctx))
		}
	}

	return nil
}

// RecoverAuth runs one refresh episode (joining any already in flight) and
// returns the token it produced. Used by the transport sub-package after
// observing a 401.
func (c *Client) RecoverAuth(ctx context.Context) (string, error) {
	if c == nil || c.tokens == nil {
		return "", ErrClientNotReady
	}
	if c.closed.Load() {
		return "", ErrClientClosed
	}
	c.metricInc(MetricAuthChallenges)
	return c.refreshToken(ctx, &attempt{})
}
