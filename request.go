package goGate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var validMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
	http.MethodHead:   {},
}

// attempt carries one logical gateway call through the interception flow.
// Retried is flipped exactly once; a second 401 on the same attempt is
// surfaced, never recovered again.
type attempt struct {
	method    string
	path      string
	body      []byte
	opts      RequestOptions
	tenantID  string
	requestID string
	retried   bool
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post describes the post operation and its observable behavior.
//
// Post may return an error when input validation, dependency calls, or security checks fail.
// Post does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Put(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, body)
}

// Patch describes the patch operation and its observable behavior.
//
// Patch may return an error when input validation, dependency calls, or security checks fail.
// Patch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Patch(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, path, body)
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// Request describes the request operation and its observable behavior.
//
// Request may return an error when input validation, dependency calls, or security checks fail.
// Request does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Request(ctx context.Context, method, path string, body []byte) (*Response, error) {
	return c.RequestWithOptions(ctx, method, path, body, RequestOptions{})
}

// DoJSON describes the dojson operation and its observable behavior.
//
// DoJSON may return an error when input validation, dependency calls, or security checks fail.
// DoJSON does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
		body = encoded
	}

	resp, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// RequestWithOptions describes the requestwithoptions operation and its observable behavior.
//
// RequestWithOptions may return an error when input validation, dependency calls, or security checks fail.
// RequestWithOptions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RequestWithOptions(ctx context.Context, method, path string, body []byte, opts RequestOptions) (*Response, error) {
	if c == nil || c.tokens == nil {
		return nil, ErrClientNotReady
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := validMethods[method]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	a := &attempt{
		method:    method,
		path:      path,
		body:      body,
		opts:      opts,
		tenantID:  c.resolveTenant(ctx),
		requestID: c.resolveRequestID(ctx),
	}

	if c.config.Tenant.Require && a.tenantID == "" {
		return nil, ErrTenantRequired
	}

	c.metricInc(MetricRequests)
	start := time.Now()

	resp, err := c.dispatch(ctx, a)
	c.metricObserve(MetricRequestLatency, time.Since(start))
	if err != nil {
		c.metricInc(MetricRequestFailures)
		return nil, err
	}

	c.auditOutcome(ctx, auditEventRequest, a, resp.StatusCode, time.Since(start), nil)
	return resp, nil
}

// dispatch runs the interception loop: send, classify, and at most one
// refresh-and-retry round for a first 401.
func (c *Client) dispatch(ctx context.Context, a *attempt) (*Response, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}

	if fresh, refreshed, err := c.maybeProactiveRefresh(ctx, a, token); err != nil {
		return nil, err
	} else if refreshed {
		token = fresh
	}

	for {
		status, header, body, sendErr := c.send(ctx, a, token)
		if sendErr != nil {
			c.metricInc(MetricTransportErrors)
			c.auditOutcome(ctx, auditEventTransportError, a, 0, 0, sendErr)
			if errors.Is(sendErr, ErrResponseTooLarge) {
				return nil, sendErr
			}
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, sendErr)
		}

		if status >= 200 && status < 300 {
			return &Response{
				StatusCode: status,
				Header:     header,
				Body:       body,
				RequestID:  a.requestID,
			}, nil
		}

		statusErr := newStatusError(status, fmt.Sprintf("%d %s", status, http.StatusText(status)), body, a.requestID)

		switch status {
		case http.StatusUnauthorized:
			c.metricInc(MetricAuthChallenges)
			if a.retried || a.opts.NoRetry || !c.config.Auth.RetryOn401 {
				c.auditOutcome(ctx, auditEventRequest, a, status, 0, statusErr)
				return nil, statusErr
			}
			a.retried = true

			fresh, refreshErr := c.refreshToken(ctx, a)
			if refreshErr != nil {
				return nil, refreshErr
			}
			token = fresh
			c.metricInc(MetricRetrySuccess)
			c.auditOutcome(ctx, auditEventRetry, a, status, 0, nil)
			continue

		case http.StatusForbidden:
			c.metricInc(MetricForbidden)
			c.auditOutcome(ctx, auditEventForbidden, a, status, 0, statusErr)
			return nil, statusErr

		case http.StatusTooManyRequests:
			c.metricInc(MetricRateLimited)
			c.auditOutcome(ctx, auditEventRateLimited, a, status, 0, statusErr)
			return nil, statusErr

		default:
			c.metricInc(MetricGatewayErrors)
			c.auditOutcome(ctx, auditEventGatewayError, a, status, 0, statusErr)
			return nil, statusErr
		}
	}
}

// send performs one HTTP round trip for the attempt with the given token.
func (c *Client) send(ctx context.Context, a *attempt, token string) (int, http.Header, []byte, error) {
	target := c.baseURL.JoinPath(a.path)
	if len(a.opts.Query) > 0 {
		merged := target.Query()
		for key, values := range a.opts.Query {
			for _, v := range values {
				merged.Add(key, v)
			}
		}
		target.RawQuery = merged.Encode()
	}

	var reader io.Reader
	if len(a.body) > 0 {
		reader = bytes.NewReader(a.body)
	}

	req, err := http.NewRequestWithContext(ctx, a.method, target.String(), reader)
	if err != nil {
		return 0, nil, nil, err
	}

	for key, value := range c.config.HTTP.StaticHeaders {
		req.Header.Set(key, value)
	}
	for key, values := range a.opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	req.Header.Set("Accept", "application/json")
	if len(a.body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.HTTP.UserAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", c.config.Auth.Scheme+" "+token)
	}
	if a.tenantID != "" {
		req.Header.Set(c.config.Tenant.Header, a.tenantID)
	}
	if c.config.HTTP.EmitRequestIDs && a.requestID != "" {
		req.Header.Set(c.config.HTTP.RequestIDHeader, a.requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := c.config.HTTP.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return 0, nil, nil, err
	}
	if int64(len(body)) > limit {
		return 0, nil, nil, ErrResponseTooLarge
	}

	return resp.StatusCode, resp.Header, body, nil
}

func (c *Client) resolveTenant(ctx context.Context) string {
	if tenantID, ok := tenantIDFromContext(ctx); ok {
		return tenantID
	}
	if c.tenants != nil {
		return c.tenants.TenantID(ctx)
	}
	return ""
}

func (c *Client) resolveRequestID(ctx context.Context) string {
	if requestID, ok := requestIDFromContext(ctx); ok {
		return requestID
	}
	if !c.config.HTTP.EmitRequestIDs {
		return ""
	}
	return uuid.NewString()
}
