// api/idp/token_cache_test.go
package idp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/idp"
)

func tokenServer(t *testing.T, hits *int64, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "recipe-service", r.PostForm.Get("client_id"))

		n := atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": fmt.Sprintf("token-%d", n),
			"expires_in":   expiresIn,
		})
	}))
}

func TestTokenCacheReuse(t *testing.T) {
	var hits int64
	server := tokenServer(t, &hits, 300)
	defer server.Close()

	cache := idp.NewTokenCache(server.URL, "recipe-service", "secret", 5*time.Second)
	ctx := context.Background()

	first, err := cache.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", first)

	second, err := cache.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

// Tokens with less lifetime than the expiry skew are treated as already
// stale and re-fetched on every call.
func TestTokenCacheSkew(t *testing.T) {
	var hits int64
	server := tokenServer(t, &hits, 10)
	defer server.Close()

	cache := idp.NewTokenCache(server.URL, "recipe-service", "secret", 5*time.Second)
	ctx := context.Background()

	_, err := cache.GetToken(ctx)
	require.NoError(t, err)
	_, err = cache.GetToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestTokenCacheInvalidate(t *testing.T) {
	var hits int64
	server := tokenServer(t, &hits, 300)
	defer server.Close()

	cache := idp.NewTokenCache(server.URL, "recipe-service", "secret", 5*time.Second)
	ctx := context.Background()

	first, err := cache.GetToken(ctx)
	require.NoError(t, err)

	cache.Invalidate()

	second, err := cache.GetToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

// Concurrent callers on a cold cache produce a single fetch: the lock is
// held across the exchange.
func TestTokenCacheConcurrentColdStart(t *testing.T) {
	var hits int64
	server := tokenServer(t, &hits, 300)
	defer server.Close()

	cache := idp.NewTokenCache(server.URL, "recipe-service", "secret", 5*time.Second)

	var wg sync.WaitGroup
	tokens := make([]string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := cache.GetToken(context.Background())
			assert.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
	for _, token := range tokens {
		assert.Equal(t, "token-1", token)
	}
}

func TestTokenCacheFailureCachesNothing(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "recovered",
			"expires_in":   300,
		})
	}))
	defer server.Close()

	cache := idp.NewTokenCache(server.URL, "recipe-service", "secret", 5*time.Second)
	ctx := context.Background()

	_, err := cache.GetToken(ctx)
	assert.ErrorIs(t, err, mealcraft_errors.ErrAdminAuthFailure)

	token, err := cache.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recovered", token)
}
