package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is an exported constant or variable used by the gateway client.
var ErrNotJWT = errors.New("token is not a jwt")

// ErrNoExpiry is an exported constant or variable used by the gateway client.
var ErrNoExpiry = errors.New("token carries no expiry claim")

// Expiry describes the expiry operation and its observable behavior.
//
// Expiry may return an error when input validation, dependency calls, or security checks fail.
// Expiry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Expiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: empty token", ErrNotJWT)
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}

// TimeToLive describes the timetolive operation and its observable behavior.
//
// TimeToLive may return an error when input validation, dependency calls, or security checks fail.
// TimeToLive does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func TimeToLive(token string, now time.Time) (time.Duration, error) {
	expiry, err := Expiry(token)
	if err != nil {
		return 0, err
	}
	return expiry.Sub(now), nil
}
