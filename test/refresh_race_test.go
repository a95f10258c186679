//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/tokenstore"
)

// Two client processes share one Redis-backed token scope. When the gateway
// expires the token under concurrent load from both, exactly one upstream
// exchange happens: the in-process refresh gates coalesce their own callers
// and the Redis lock serializes the two processes.
func TestCrossProcessRefreshSingleExchange(t *testing.T) {
	const workersPerClient = 6

	gateway, server := newIntegrationGateway(t)
	rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	// The exchange blocks until both processes have a refresh episode in
	// flight, so their episodes overlap and the lock must arbitrate.
	release := make(chan struct{})
	refresh := func(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error) {
		<-release
		pair, ok := gateway.exchange(refreshToken)
		if !ok {
			return tokenstore.TokenPair{}, tokenstore.ErrNoRefreshToken
		}
		return pair, nil
	}

	newClient := func() *goGate.Client {
		store, err := tokenstore.NewRedis(rdb, tokenstore.RedisConfig{
			Scope:   "it",
			Refresh: refresh,
		})
		if err != nil {
			t.Fatalf("NewRedis failed: %v", err)
		}

		client, err := goGate.New().
			WithBaseURL(server.URL).
			WithTokenStore(store).
			WithMetricsEnabled(true).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		t.Cleanup(client.Close)
		return client
	}

	seedStore, err := tokenstore.NewRedis(rdb, tokenstore.RedisConfig{Scope: "it", Refresh: refresh})
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	if err := seedStore.Save(context.Background(), gateway.currentPair()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	clientA := newClient()
	clientB := newClient()

	// Warm both clients, then yank the token.
	if _, err := clientA.Get(context.Background(), "/v1/orders"); err != nil {
		t.Fatalf("warmup A failed: %v", err)
	}
	if _, err := clientB.Get(context.Background(), "/v1/orders"); err != nil {
		t.Fatalf("warmup B failed: %v", err)
	}
	gateway.expire()

	var wg sync.WaitGroup
	results := make(chan error, 2*workersPerClient)
	for _, client := range []*goGate.Client{clientA, clientB} {
		for i := 0; i < workersPerClient; i++ {
			wg.Add(1)
			go func(c *goGate.Client) {
				defer wg.Done()
				_, err := c.Get(context.Background(), "/v1/orders")
				results <- err
			}(client)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if clientA.Refreshing() && clientB.Refreshing() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !clientA.Refreshing() || !clientB.Refreshing() {
		t.Fatal("timed out waiting for both processes to enter a refresh episode")
	}
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("expected every request to recover, got %v", err)
		}
	}

	if got := gateway.exchanges.Load(); got != 1 {
		t.Fatalf("expected exactly one upstream exchange, got %d", got)
	}

	// Each process ran at most one refresh episode of its own.
	for name, client := range map[string]*goGate.Client{"A": clientA, "B": clientB} {
		snapshot := client.MetricsSnapshot()
		if got := snapshot.Counters[goGate.MetricRefreshSuccess]; got > 1 {
			t.Fatalf("client %s: expected at most one episode, got %d", name, got)
		}
	}
}

func TestFailedExchangeExpiresSession(t *testing.T) {
	gateway, server := newIntegrationGateway(t)
	rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	// The refresh delegate always fails, as if the refresh token were revoked.
	refresh := func(context.Context, string) (tokenstore.TokenPair, error) {
		return tokenstore.TokenPair{}, tokenstore.ErrRefreshUnavailable
	}

	store, err := tokenstore.NewRedis(rdb, tokenstore.RedisConfig{Scope: "it", Refresh: refresh})
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	if err := store.Save(context.Background(), gateway.currentPair()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	client, err := goGate.New().
		WithBaseURL(server.URL).
		WithTokenStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	gateway.expire()

	if _, err := client.Get(context.Background(), "/v1/orders"); !errors.Is(err, goGate.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after failed exchange, got %v", err)
	}
}
