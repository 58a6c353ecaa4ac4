package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCredential struct {
	mu      sync.Mutex
	calls   atomic.Int64
	token   string
	expires time.Time
	err     error
}

func (f *fakeCredential) GetToken(ctx context.Context) (string, time.Time, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.token, f.expires, nil
}

func (f *fakeCredential) String() string { return "fakeCredential" }

func (f *fakeCredential) set(token string, expires time.Time, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.expires = expires
	f.err = err
}

func TestTokenCache_CachesUntilMargin(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := &fakeCredential{}
	cred.set("tok-1", base.Add(time.Hour), nil)

	now := base
	cache := NewTokenCache(cred)
	cache.now = func() time.Time { return now }

	tok, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.EqualValues(t, 1, cred.calls.Load())

	// Well before the margin the cached token is reused.
	now = base.Add(30 * time.Minute)
	tok, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.EqualValues(t, 1, cred.calls.Load())
}

func TestTokenCache_RefreshesInsideMargin(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := base.Add(time.Hour)
	cred := &fakeCredential{}
	cred.set("tok-1", expiry, nil)

	now := base
	cache := NewTokenCache(cred)
	cache.now = func() time.Time { return now }

	_, err := cache.GetToken(context.Background())
	require.NoError(t, err)

	// Four minutes before expiry is inside the five-minute margin: the old
	// token must never come back.
	cred.set("tok-2", expiry.Add(time.Hour), nil)
	now = expiry.Add(-4 * time.Minute)

	tok, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
	require.EqualValues(t, 2, cred.calls.Load())
}

func TestTokenCache_RefreshAtExactMarginBoundary(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := base.Add(time.Hour)
	cred := &fakeCredential{}
	cred.set("tok-1", expiry, nil)

	now := base
	cache := NewTokenCache(cred)
	cache.now = func() time.Time { return now }

	_, err := cache.GetToken(context.Background())
	require.NoError(t, err)

	cred.set("tok-2", expiry.Add(time.Hour), nil)
	now = expiry.Add(-DefaultRefreshMargin)

	tok, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
}

func TestTokenCache_ErrorPropagatesAndCacheSurvives(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := &fakeCredential{}
	cred.set("", time.Time{}, fmt.Errorf("%w: az not logged in", ErrCredentialUnavailable))

	now := base
	cache := NewTokenCache(cred)
	cache.now = func() time.Time { return now }

	_, err := cache.GetToken(context.Background())
	require.ErrorIs(t, err, ErrCredentialUnavailable)

	// Recovery works on the next call; nothing stale was recorded.
	cred.set("tok-1", base.Add(time.Hour), nil)
	tok, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
}

func TestTokenCache_ConcurrentCallersSingleRefresh(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := &fakeCredential{}
	cred.set("tok-1", base.Add(time.Hour), nil)

	cache := NewTokenCache(cred)
	cache.now = func() time.Time { return base }

	// Prime the cache, then hammer it: the external mechanism must be hit
	// exactly once.
	_, err := cache.GetToken(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.GetToken(context.Background())
			require.NoError(t, err)
			require.Equal(t, "tok-1", tok)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, cred.calls.Load())
}
