package auth

import (
	"context"
	"sync"
	"time"

	"sqlbridge-mcp/internal/logger"
)

// DefaultRefreshMargin is the lead time before expiry during which a cached
// token is treated as already expired.
const DefaultRefreshMargin = 5 * time.Minute

// TokenCache serializes token acquisition behind a mutex so that concurrent
// callers holding a valid cached token never trigger redundant refreshes.
// A failed refresh leaves the previous cache state untouched.
type TokenCache struct {
	mu        sync.Mutex
	cred      Credential
	margin    time.Duration
	token     string
	expiresOn time.Time
	now       func() time.Time
}

func NewTokenCache(cred Credential) *TokenCache {
	return &TokenCache{
		cred:   cred,
		margin: DefaultRefreshMargin,
		now:    time.Now,
	}
}

// GetToken returns the cached token, refreshing it first when it is absent
// or within the safety margin of its expiry. A token is never handed out at
// or past expiry minus the margin.
func (c *TokenCache) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.expiresOn.Add(-c.margin)) {
		return c.token, nil
	}

	token, expiresOn, err := c.cred.GetToken(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresOn = expiresOn
	logger.Debug("token refreshed", "credential", c.cred.String(), "expires_on", expiresOn)
	return c.token, nil
}
