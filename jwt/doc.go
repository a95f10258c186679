// Package jwt inspects access tokens without verifying them, extracting the
// expiry claim that drives proactive refresh ahead of a guaranteed 401.
// The gateway is the verifier; this client holds no signing or verify keys.
package jwt
