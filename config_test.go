package goGate

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "base url missing",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = ""
			},
			wantValid: false,
		},
		{
			name: "base url wrong scheme",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "ftp://gateway.internal"
			},
			wantValid: false,
		},
		{
			name: "base url without host",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "https://"
			},
			wantValid: false,
		},
		{
			name: "timeout negative",
			mutate: func(c *Config) {
				c.HTTP.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "timeout zero valid",
			mutate: func(c *Config) {
				c.HTTP.Timeout = 0
			},
			wantValid: true,
		},
		{
			name: "max body bytes zero",
			mutate: func(c *Config) {
				c.HTTP.MaxBodyBytes = 0
			},
			wantValid: false,
		},
		{
			name: "request id header required when emitting",
			mutate: func(c *Config) {
				c.HTTP.EmitRequestIDs = true
				c.HTTP.RequestIDHeader = ""
			},
			wantValid: false,
		},
		{
			name: "request ids disabled allows empty header",
			mutate: func(c *Config) {
				c.HTTP.EmitRequestIDs = false
				c.HTTP.RequestIDHeader = ""
			},
			wantValid: true,
		},
		{
			name: "static header plain valid",
			mutate: func(c *Config) {
				c.HTTP.StaticHeaders = map[string]string{"X-Env": "staging"}
			},
			wantValid: true,
		},
		{
			name: "static header blank key",
			mutate: func(c *Config) {
				c.HTTP.StaticHeaders = map[string]string{"  ": "x"}
			},
			wantValid: false,
		},
		{
			name: "static header shadows authorization",
			mutate: func(c *Config) {
				c.HTTP.StaticHeaders = map[string]string{"authorization": "Basic abc"}
			},
			wantValid: false,
		},
		{
			name: "static header shadows tenant header",
			mutate: func(c *Config) {
				c.HTTP.StaticHeaders = map[string]string{"x-tenant-id": "other"}
			},
			wantValid: false,
		},
		{
			name: "static header shadows request id header",
			mutate: func(c *Config) {
				c.HTTP.StaticHeaders = map[string]string{"x-request-id": "fixed"}
			},
			wantValid: false,
		},
		{
			name: "auth scheme empty",
			mutate: func(c *Config) {
				c.Auth.Scheme = ""
			},
			wantValid: false,
		},
		{
			name: "auth scheme with whitespace",
			mutate: func(c *Config) {
				c.Auth.Scheme = "Bearer extra"
			},
			wantValid: false,
		},
		{
			name: "refresh skew negative",
			mutate: func(c *Config) {
				c.Auth.RefreshSkew = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "refresh timeout negative",
			mutate: func(c *Config) {
				c.Auth.RefreshTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "tenant header empty",
			mutate: func(c *Config) {
				c.Tenant.Header = ""
			},
			wantValid: false,
		},
		{
			name: "audit enabled needs buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit disabled ignores buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = 0
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.HTTP.BaseURL = "https://gateway.internal"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestCloneConfigCopiesStaticHeaders(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.StaticHeaders = map[string]string{"X-Env": "staging"}

	clone := cloneConfig(cfg)
	clone.HTTP.StaticHeaders["X-Env"] = "prod"

	if cfg.HTTP.StaticHeaders["X-Env"] != "staging" {
		t.Fatal("clone mutated the source static headers")
	}
}
