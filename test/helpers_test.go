//go:build integration
// +build integration

package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/goGate/tokenstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationRedis(t *testing.T) (redis.UniversalClient, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})

	return rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// fakeGateway is an upstream that accepts exactly one bearer token at a time
// and counts refresh exchanges. Expire flips it into rejecting everything
// until the next exchange.
type fakeGateway struct {
	mu        sync.Mutex
	gen       int
	access    string
	refresh   string
	expired   bool
	exchanges atomic.Int32
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{}
	g.rotate()
	return g
}

func (g *fakeGateway) rotate() tokenstore.TokenPair {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	g.access = fmt.Sprintf("access-%d", g.gen)
	g.refresh = fmt.Sprintf("refresh-%d", g.gen)
	g.expired = false

	return tokenstore.TokenPair{
		AccessToken:  g.access,
		RefreshToken: g.refresh,
	}
}

func (g *fakeGateway) currentPair() tokenstore.TokenPair {
	g.mu.Lock()
	defer g.mu.Unlock()
	return tokenstore.TokenPair{
		AccessToken:  g.access,
		RefreshToken: g.refresh,
	}
}

func (g *fakeGateway) expire() {
	g.mu.Lock()
	g.expired = true
	g.mu.Unlock()
}

// exchange validates the presented refresh token and rotates the pair.
func (g *fakeGateway) exchange(refreshToken string) (tokenstore.TokenPair, bool) {
	g.mu.Lock()
	valid := refreshToken == g.refresh
	g.mu.Unlock()
	if !valid {
		return tokenstore.TokenPair{}, false
	}

	g.exchanges.Add(1)
	return g.rotate(), true
}

func (g *fakeGateway) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		ok := !g.expired && r.Header.Get("Authorization") == "Bearer "+g.access
		g.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func newIntegrationGateway(t *testing.T) (*fakeGateway, *httptest.Server) {
	t.Helper()

	gateway := newFakeGateway()
	server := httptest.NewServer(gateway.handler())
	t.Cleanup(server.Close)

	return gateway, server
}
