package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrRefreshUnavailable is an exported constant or variable used by the gateway client.
var ErrRefreshUnavailable = errors.New("refresh unavailable")

// ErrNoRefreshFunc is an exported constant or variable used by the gateway client.
var ErrNoRefreshFunc = errors.New("nil refresh func")

// ErrNoRefreshToken is an exported constant or variable used by the gateway client.
var ErrNoRefreshToken = errors.New("no refresh token held")

// ErrRedisUnavailable is an exported constant or variable used by the gateway client.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrLockTimeout is returned when a refresh lock loser gives up waiting
// for the winner to publish a rotated pair.
var ErrLockTimeout = errors.New("refresh lock timed out")

// TokenPair is one rotation of gateway credentials. ExpiresAt bounds the
// access token; zero means the issuer did not say.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// RefreshFunc exchanges the held refresh token for a rotated pair against
// the upstream auth system.
type RefreshFunc func(ctx context.Context, refreshToken string) (TokenPair, error)
