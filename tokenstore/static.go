package tokenstore

import "context"

// Static is a token store pinned to one fixed access token. Refresh always
// fails, so a 401 against a Static store ends the session.
type Static struct {
	token string
}

// NewStatic describes the newstatic operation and its observable behavior.
//
// NewStatic may return an error when input validation, dependency calls, or security checks fail.
// NewStatic does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStatic(token string) *Static {
	return &Static{token: token}
}

// AccessToken describes the accesstoken operation and its observable behavior.
//
// AccessToken may return an error when input validation, dependency calls, or security checks fail.
// AccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Static) AccessToken(context.Context) (string, error) {
	if s == nil {
		return "", nil
	}
	return s.token, nil
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Static) Refresh(context.Context) (string, error) {
	return "", ErrRefreshUnavailable
}
