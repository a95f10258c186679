package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/tokenstore"
)

func newTransportClient(t *testing.T, store goGate.TokenStore, gatewayURL string) *goGate.Client {
	t.Helper()

	client, err := goGate.New().
		WithBaseURL(gatewayURL).
		WithTokenStore(store).
		WithTenantSource(goGate.StaticTenant("acme")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

func TestRoundTripInjectsHeaders(t *testing.T) {
	var gotAuth, gotTenant string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTenant = r.Header.Get("X-Tenant-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTransportClient(t, tokenstore.NewStatic("tok-1"), server.URL)
	httpClient := &http.Client{Transport: New(client)}

	resp, err := httpClient.Get(server.URL + "/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected Bearer tok-1, got %q", gotAuth)
	}
	if gotTenant != "acme" {
		t.Fatalf("expected tenant acme, got %q", gotTenant)
	}
}

func TestRoundTripRetriesOnceAfterRefresh(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := tokenstore.NewMemory(
		tokenstore.TokenPair{AccessToken: "tok-old", RefreshToken: "r1"},
		func(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error) {
			return tokenstore.TokenPair{AccessToken: "tok-new", RefreshToken: "r2"}, nil
		},
	)
	client := newTransportClient(t, store, server.URL)
	httpClient := &http.Client{Transport: New(client)}

	resp, err := httpClient.Get(server.URL + "/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after retry, got %d", resp.StatusCode)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 gateway hits, got %d", got)
	}
}

func TestRoundTripSurfaces401WhenRefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTransportClient(t, tokenstore.NewStatic("tok-dead"), server.URL)
	httpClient := &http.Client{Transport: New(client)}

	resp, err := httpClient.Get(server.URL + "/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected surfaced 401, got %d", resp.StatusCode)
	}
}

func TestRoundTripReplaysBodyOnRetry(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(payload))
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := tokenstore.NewMemory(
		tokenstore.TokenPair{AccessToken: "tok-old", RefreshToken: "r1"},
		func(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error) {
			return tokenstore.TokenPair{AccessToken: "tok-new", RefreshToken: "r2"}, nil
		},
	)
	client := newTransportClient(t, store, server.URL)
	httpClient := &http.Client{Transport: New(client)}

	resp, err := httpClient.Post(server.URL+"/data", "application/json", bytes.NewReader([]byte(`{"n":1}`)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(bodies) != 2 || bodies[0] != `{"n":1}` || bodies[1] != `{"n":1}` {
		t.Fatalf("expected body replayed on retry, got %q", bodies)
	}
}
