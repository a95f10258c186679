package goGate

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by goGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	HTTP    HTTPConfig
	Auth    AuthConfig
	Tenant  TenantConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by goGate APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	BaseURL         string
	Timeout         time.Duration
	MaxBodyBytes    int64
	UserAgent       string
	RequestIDHeader string
	EmitRequestIDs  bool
	StaticHeaders   map[string]string
}

/*
====================================
AUTH CONFIG
====================================
*/

// AuthConfig defines a public type used by goGate APIs.
//
// AuthConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthConfig struct {
	Scheme         string // "Bearer" (default)
	RetryOn401     bool
	RefreshSkew    time.Duration // 0 disables proactive refresh
	RefreshTimeout time.Duration // 0 leaves the episode unbounded
}

/*
====================================
TENANT CONFIG
====================================
*/

// TenantConfig defines a public type used by goGate APIs.
//
// TenantConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TenantConfig struct {
	Header  string
	Require bool
}

// AuditConfig defines a public type used by goGate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goGate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			MaxBodyBytes:    10 << 20,
			UserAgent:       "goGate",
			RequestIDHeader: "X-Request-ID",
			EmitRequestIDs:  true,
		},
		Auth: AuthConfig{
			Scheme:         "Bearer",
			RetryOn401:     true,
			RefreshSkew:    0,
			RefreshTimeout: 0,
		},
		Tenant: TenantConfig{
			Header:  "X-Tenant-ID",
			Require: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.HTTP.StaticHeaders = cloneHeaders(cfg.HTTP.StaticHeaders)
	return out
}

func cloneHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// HTTP
	if c.HTTP.BaseURL == "" {
		return errors.New("HTTP BaseURL is required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil {
		return errors.New("HTTP BaseURL must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("HTTP BaseURL scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("HTTP BaseURL must include a host")
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must be >= 0")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("HTTP MaxBodyBytes must be > 0")
	}
	if c.HTTP.EmitRequestIDs && c.HTTP.RequestIDHeader == "" {
		return errors.New("HTTP RequestIDHeader is required when EmitRequestIDs is true")
	}

	reserved := map[string]struct{}{
		http.CanonicalHeaderKey("Authorization"): {},
		http.CanonicalHeaderKey(c.Tenant.Header): {},
	}
	if c.HTTP.EmitRequestIDs {
		reserved[http.CanonicalHeaderKey(c.HTTP.RequestIDHeader)] = struct{}{}
	}
	for k := range c.HTTP.StaticHeaders {
		if strings.TrimSpace(k) == "" {
			return errors.New("HTTP StaticHeaders keys must be non-empty")
		}
		if _, clash := reserved[http.CanonicalHeaderKey(k)]; clash {
			return errors.New("HTTP StaticHeaders must not override injected headers")
		}
	}

	// Auth
	if c.Auth.Scheme == "" {
		return errors.New("Auth Scheme is required")
	}
	if strings.ContainsAny(c.Auth.Scheme, " \t") {
		return errors.New("Auth Scheme must not contain whitespace")
	}
	if c.Auth.RefreshSkew < 0 {
		return errors.New("Auth RefreshSkew must be >= 0")
	}
	if c.Auth.RefreshTimeout < 0 {
		return errors.New("Auth RefreshTimeout must be >= 0")
	}

	// Tenant
	if c.Tenant.Header == "" {
		return errors.New("Tenant Header is required")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
