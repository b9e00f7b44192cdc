// api/auth/keyring.go
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
)

var errNotAToken = errors.New("not a three-segment token")

// JSONWebKey is one key descriptor from the provider's discovery document.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []JSONWebKey `json:"keys"`
}

// KeyRing caches the provider's RSA public keys by key id. It owns the key
// set for the process lifetime; keys are never proactively expired, but an
// unknown kid forces a full refresh before the lookup fails.
type KeyRing struct {
	jwksURI string
	client  *http.Client
	group   singleflight.Group

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewKeyRing creates a KeyRing against the given JWKS endpoint. All fetches
// are bounded by timeout.
func NewKeyRing(jwksURI string, timeout time.Duration) *KeyRing {
	return &KeyRing{
		jwksURI: jwksURI,
		client:  &http.Client{Timeout: timeout},
		keys:    make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the public key for kid. On a cache miss it refreshes the
// key set once synchronously and checks again; if the kid is still unknown
// the lookup fails with ErrUnknownSigningKey. A refresh failure never
// invalidates previously cached keys.
func (kr *KeyRing) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	kr.mu.RLock()
	key, ok := kr.keys[kid]
	kr.mu.RUnlock()
	if ok {
		return key, nil
	}

	// Concurrent misses share one refresh rather than stampeding the
	// discovery endpoint.
	if _, err, _ := kr.group.Do("refresh", func() (interface{}, error) {
		return nil, kr.Refresh(ctx)
	}); err != nil {
		logger.Warn("Key refresh failed during lookup", zap.Error(err), zap.String("kid", kid))
		return nil, err
	}

	kr.mu.RLock()
	key, ok = kr.keys[kid]
	kr.mu.RUnlock()
	if !ok {
		return nil, mealcraft_errors.ErrUnknownSigningKey
	}
	return key, nil
}

// Refresh fetches the discovery document and replaces the cached entry for
// every RSA key it lists. Concurrent refreshes are safe; last writer wins
// per key id.
func (kr *KeyRing) Refresh(ctx context.Context) error {
	if kr.jwksURI == "" {
		return fmt.Errorf("%w: jwks uri not configured", mealcraft_errors.ErrKeyFetchFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kr.jwksURI, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", mealcraft_errors.ErrKeyFetchFailure, err)
	}

	resp, err := kr.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", mealcraft_errors.ErrKeyFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: discovery endpoint returned %d", mealcraft_errors.ErrKeyFetchFailure, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", mealcraft_errors.ErrKeyFetchFailure, err)
	}

	loaded := 0
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		key, err := rsaPublicKeyFromJWK(jwk)
		if err != nil {
			logger.Warn("Skipping unparseable signing key", zap.Error(err), zap.String("kid", jwk.Kid))
			continue
		}
		kr.mu.Lock()
		kr.keys[jwk.Kid] = key
		kr.mu.Unlock()
		loaded++
	}

	logger.Info("Refreshed signing keys", zap.String("uri", kr.jwksURI), zap.Int("loaded", loaded))
	return nil
}

// rsaPublicKeyFromJWK reconstructs an RSA public key from the base64url
// big-endian modulus and exponent of a key descriptor.
func rsaPublicKeyFromJWK(jwk JSONWebKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
