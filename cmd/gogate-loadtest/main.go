package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/tokenstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// stubGateway is a local upstream that rejects every request whose bearer
// token is not the one it most recently issued. A background ticker expires
// the accepted token to force refresh storms.
type stubGateway struct {
	gen      atomic.Int64
	accepted atomic.Value // string
	issued   atomic.Int64
	rejected atomic.Int64
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (g *stubGateway) issue() tokenResponse {
	gen := g.gen.Add(1)
	access := fmt.Sprintf("access-%d", gen)
	g.accepted.Store(access)
	g.issued.Add(1)
	return tokenResponse{
		AccessToken:  access,
		RefreshToken: fmt.Sprintf("refresh-%d", gen),
	}
}

func (g *stubGateway) expire() {
	g.accepted.Store("")
}

func (g *stubGateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(g.issue())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		accepted, _ := g.accepted.Load().(string)
		if accepted == "" || r.Header.Get("Authorization") != "Bearer "+accepted {
			g.rejected.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func main() {
	var (
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "total requests to issue")
		expireEvery = flag.Duration("expire-every", 250*time.Millisecond, "how often the gateway expires the accepted token")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gg", "token key prefix")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	gateway := &stubGateway{}
	gateway.accepted.Store("")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
		os.Exit(1)
	}
	server := &http.Server{Handler: gateway.handler()}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()
	gatewayURL := "http://" + listener.Addr().String()

	stopExpiry := make(chan struct{})
	go func() {
		ticker := time.NewTicker(*expireEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gateway.expire()
			case <-stopExpiry:
				return
			}
		}
	}()
	defer close(stopExpiry)

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup     func()
		redisClient redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		redisClient = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = redisClient.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		redisClient = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = redisClient.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store, err := tokenstore.NewRedis(redisClient, tokenstore.RedisConfig{
		Prefix:  *prefix,
		Scope:   "loadtest",
		Refresh: exchangeFunc(gatewayURL + "/oauth/token"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token store setup failed: %v\n", err)
		os.Exit(1)
	}

	seed := gateway.issue()
	if err := store.Save(ctx, tokenstore.TokenPair{
		AccessToken:  seed.AccessToken,
		RefreshToken: seed.RefreshToken,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	client, err := goGate.New().
		WithBaseURL(gatewayURL).
		WithTokenStore(store).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client setup failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("running %d requests across %d workers, token expires every %s...\n", *ops, *concurrency, *expireEvery)
	stats := runRequestPhase(ctx, client, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("request", stats)

	snapshot := client.MetricsSnapshot()
	challenges := snapshot.Counters[goGate.MetricAuthChallenges]
	refreshes := snapshot.Counters[goGate.MetricRefreshSuccess]
	coalesced := snapshot.Counters[goGate.MetricRefreshCoalesced]
	ratio := 0.0
	if refreshes > 0 {
		ratio = float64(coalesced) / float64(refreshes)
	}
	fmt.Printf("gateway: issued=%d rejected=%d\n", gateway.issued.Load(), gateway.rejected.Load())
	fmt.Printf("auth: challenges=%d refreshes=%d coalesced=%d coalesced/refresh=%.1f retries=%d failures=%d\n",
		challenges,
		refreshes,
		coalesced,
		ratio,
		snapshot.Counters[goGate.MetricRetrySuccess],
		snapshot.Counters[goGate.MetricRequestFailures],
	)
}

// exchangeFunc returns a RefreshFunc that trades the stored refresh token at
// the stub gateway's token endpoint.
func exchangeFunc(tokenURL string) tokenstore.RefreshFunc {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context, refreshToken string) (tokenstore.TokenPair, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
		if err != nil {
			return tokenstore.TokenPair{}, err
		}
		req.Header.Set("X-Refresh-Token", refreshToken)

		resp, err := httpClient.Do(req)
		if err != nil {
			return tokenstore.TokenPair{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return tokenstore.TokenPair{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
		}

		var out tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return tokenstore.TokenPair{}, err
		}
		return tokenstore.TokenPair{
			AccessToken:  out.AccessToken,
			RefreshToken: out.RefreshToken,
		}, nil
	}
}

func runRequestPhase(ctx context.Context, client *goGate.Client, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := client.Get(ctx, "/v1/orders")
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
