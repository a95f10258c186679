// Package refreshgate coalesces concurrent token refresh attempts into a
// single upstream call per failure episode.
package refreshgate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoToken is returned when a refresh completes without error but
// produces an empty token. The episode is treated as failed.
var ErrNoToken = errors.New("refresh returned no token")

// RefreshFunc performs the upstream token exchange on behalf of an
// episode leader. It runs detached from the leader's cancellation so one
// caller going away cannot poison the outcome shared by every waiter.
type RefreshFunc func(ctx context.Context) (string, error)

// Config holds gate tuning parameters.
type Config struct {
	// Timeout bounds a whole episode. Zero leaves it unbounded and the
	// refresh relies on whatever timeouts its own transport applies.
	Timeout time.Duration

	// NewEpisodeID mints an identifier for each episode, used in audit
	// trails. When nil a process-local counter is used.
	NewEpisodeID func() string
}

// Result reports how a caller's refresh attempt was satisfied.
type Result struct {
	Token     string
	EpisodeID string

	// Joined is true when the caller waited on an episode another caller
	// was already leading, rather than issuing its own refresh.
	Joined bool
}

type outcome struct {
	token     string
	episodeID string
	err       error
}

// Gate serializes refresh episodes. The first caller to arrive while the
// gate is idle becomes the episode leader and runs the refresh; callers
// arriving during a running episode are parked on per-caller handles and
// settled with the leader's outcome. Each handle is settled exactly once,
// even if its owner stops listening.
type Gate struct {
	mu         sync.Mutex
	refreshing bool
	episodeID  string
	waiters    []chan outcome

	cfg     Config
	counter atomic.Uint64
}

// New creates a [Gate] with the given configuration.
func New(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Do obtains a fresh token, either by leading a new refresh episode or by
// waiting on the episode already in flight. On failure every participant
// of the episode receives the same error; exactly one of them (the
// leader, Joined == false) should own failure side effects.
func (g *Gate) Do(ctx context.Context, refresh RefreshFunc) (Result, error) {
	if refresh == nil {
		return Result{}, fmt.Errorf("%w: nil refresh func", ErrNoToken)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	g.mu.Lock()
	if g.refreshing {
		ch := make(chan outcome, 1)
		g.waiters = append(g.waiters, ch)
		episodeID := g.episodeID
		g.mu.Unlock()

		select {
		case out := <-ch:
			return Result{Token: out.token, EpisodeID: out.episodeID, Joined: true}, out.err
		case <-ctx.Done():
			// The handle stays owned by the episode and is settled when it
			// ends; only this caller stops waiting for it.
			return Result{EpisodeID: episodeID, Joined: true}, ctx.Err()
		}
	}

	g.refreshing = true
	g.episodeID = g.nextEpisodeID()
	episodeID := g.episodeID
	g.mu.Unlock()

	rctx := context.WithoutCancel(ctx)
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, g.cfg.Timeout)
		defer cancel()
	}

	token, err := refresh(rctx)
	if err == nil && token == "" {
		err = ErrNoToken
	}
	if err != nil {
		token = ""
	}

	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.episodeID = ""
	g.mu.Unlock()

	out := outcome{token: token, episodeID: episodeID, err: err}
	for _, ch := range waiters {
		ch <- out
	}

	return Result{Token: token, EpisodeID: episodeID, Joined: false}, err
}

// Refreshing reports whether an episode is currently in flight.
func (g *Gate) Refreshing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshing
}

// Waiting reports how many callers are parked on the current episode.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

func (g *Gate) nextEpisodeID() string {
	if g.cfg.NewEpisodeID != nil {
		return g.cfg.NewEpisodeID()
	}
	return "ep-" + strconv.FormatUint(g.counter.Add(1), 10)
}
