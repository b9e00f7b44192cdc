// api/idp/token_cache.go
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	mealcraft_errors "github.com/mealcraft/api/errors"
)

// expiry skew: a cached credential is considered stale this long before the
// provider says it expires.
const tokenExpirySkew = 30 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenCache holds the privileged service-to-service credential obtained via
// the client-credentials grant. It is process-wide shared state: the token
// and its expiry are always read and written together under the lock, so a
// caller can never observe a torn value.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string
	client       *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenCache(tokenURL, clientID, clientSecret string, timeout time.Duration) *TokenCache {
	return &TokenCache{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

// GetToken returns the cached credential while it has more than the skew
// left to live, otherwise performs a client-credentials exchange and caches
// the result. A failed exchange caches nothing.
func (tc *TokenCache) GetToken(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.token != "" && time.Now().Before(tc.expiresAt.Add(-tokenExpirySkew)) {
		return tc.token, nil
	}

	form := url.Values{}
	form.Set("client_id", tc.clientID)
	form.Set("client_secret", tc.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", mealcraft_errors.ErrAdminAuthFailure, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", mealcraft_errors.ErrAdminAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", mealcraft_errors.ErrAdminAuthFailure, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %v", mealcraft_errors.ErrAdminAuthFailure, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", mealcraft_errors.ErrAdminAuthFailure)
	}

	tc.token = tr.AccessToken
	tc.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return tc.token, nil
}

// Invalidate clears the cached credential so the next GetToken re-fetches.
// Called after every attribute mutation so subsequent reads observe fresh
// server-side state.
func (tc *TokenCache) Invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = ""
	tc.expiresAt = time.Time{}
}
