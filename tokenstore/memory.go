package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process token store. It holds one access/refresh pair
// behind a mutex and rotates it through the configured [RefreshFunc].
type Memory struct {
	mu      sync.Mutex
	pair    TokenPair
	refresh RefreshFunc
}

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory may return an error when input validation, dependency calls, or security checks fail.
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory(initial TokenPair, refresh RefreshFunc) *Memory {
	return &Memory{
		pair:    initial,
		refresh: refresh,
	}
}

// AccessToken describes the accesstoken operation and its observable behavior.
//
// AccessToken may return an error when input validation, dependency calls, or security checks fail.
// AccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) AccessToken(context.Context) (string, error) {
	if m == nil {
		return "", nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair.AccessToken, nil
}

// Pair describes the pair operation and its observable behavior.
//
// Pair may return an error when input validation, dependency calls, or security checks fail.
// Pair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Pair() TokenPair {
	if m == nil {
		return TokenPair{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Set(pair TokenPair) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.pair = pair
	m.mu.Unlock()
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Refresh(ctx context.Context) (string, error) {
	if m == nil || m.refresh == nil {
		return "", ErrNoRefreshFunc
	}

	m.mu.Lock()
	refreshToken := m.pair.RefreshToken
	m.mu.Unlock()

	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	// The delegate runs outside the lock; the client's refresh gate
	// already serializes episodes, the lock only guards the pair itself.
	pair, err := m.refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.pair = pair
	m.mu.Unlock()

	return pair.AccessToken, nil
}
