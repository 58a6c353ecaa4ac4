// Package auth obtains and caches bearer tokens used as database passwords.
package auth

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialUnavailable wraps failures of the external identity
// mechanism (not logged in, network failure, permission denied).
var ErrCredentialUnavailable = errors.New("credential unavailable")

// Credential abstracts cloud token acquisition for database authentication.
// Implementations may block for several seconds while an external process
// or SDK call runs; they must honor ctx cancellation.
type Credential interface {
	// GetToken acquires a bearer token and reports when it expires.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging. Never
	// includes secret material.
	String() string
}
