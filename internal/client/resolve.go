// Package client manages the database connection pool and the substitution
// of the token marker in the connection string.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// TokenMarker is the reserved literal placed in the password position of a
// connection string to request dynamic credential substitution. Matched
// exactly and case-sensitively, on the password segment only.
const TokenMarker = "AZURE_TOKEN"

// AuthError reports that the marker was present but a current credential
// could not be produced or applied. It propagates as a connection error.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// TokenSource yields a current bearer token, refreshed as needed.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Resolver rewrites the password segment of a connection URL with a fresh
// token whenever the segment is exactly the marker. Everything else passes
// through verbatim.
type Resolver struct {
	tokens TokenSource
}

func NewResolver(tokens TokenSource) *Resolver {
	return &Resolver{tokens: tokens}
}

// Resolve returns the effective connection string for a new physical
// connection. Without the marker the input is returned unchanged,
// byte for byte.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	if !hasTokenMarker(raw) {
		return raw, nil
	}
	if r.tokens == nil {
		return "", &AuthError{Err: fmt.Errorf("no token source configured")}
	}
	token, err := r.tokens.GetToken(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	resolved, ok := swapPassword(raw, token)
	if !ok {
		return "", &AuthError{Err: fmt.Errorf("connection string has no password segment to substitute")}
	}
	return resolved, nil
}

// hasTokenMarker reports whether the password component of the URL equals
// the marker exactly. Marker text anywhere else does not count.
func hasTokenMarker(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return false
	}
	pw, ok := u.User.Password()
	return ok && pw == TokenMarker
}

// swapPassword replaces only the password octets of the authority section,
// leaving every other byte of the input untouched. The token is
// percent-encoded so it survives URL parsing by the driver.
func swapPassword(raw, token string) (string, bool) {
	scheme := strings.Index(raw, "://")
	if scheme < 0 {
		return raw, false
	}
	rest := raw[scheme+3:]
	authority := rest
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority = rest[:i]
	}
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return raw, false
	}
	colon := strings.Index(authority[:at], ":")
	if colon < 0 {
		return raw, false
	}
	head := raw[:scheme+3+colon+1]
	tail := raw[scheme+3+at:]
	return head + url.QueryEscape(token) + tail, true
}

// ValidateMarkerPlacement rejects, at startup, connection strings where the
// marker literal appears anywhere other than as the whole password segment.
// A literal password that happens to collide with the marker cannot be
// expressed; failing loudly here beats substituting into the wrong place.
func ValidateMarkerPlacement(raw string) error {
	if !strings.Contains(raw, TokenMarker) {
		return nil
	}
	if !hasTokenMarker(raw) {
		return fmt.Errorf("connection string contains the reserved marker %q outside the password segment", TokenMarker)
	}
	if strings.Count(raw, TokenMarker) != 1 {
		return fmt.Errorf("connection string contains the reserved marker %q more than once", TokenMarker)
	}
	return nil
}
