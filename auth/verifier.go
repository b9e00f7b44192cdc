// api/auth/verifier.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/model"
)

// TokenVerifier validates a bearer token and produces the canonical
// Identity. Implementations are stateless apart from the asymmetric
// verifier's key cache and never mutate request state; the caller decides
// whether to install the returned identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// legacyClaims is the HS256 token shape: flat comma-joined attribute claims.
type legacyClaims struct {
	jwt.RegisteredClaims
	Roles  string `json:"roles,omitempty"`
	Region string `json:"region,omitempty"`
	Acgs   string `json:"acgs,omitempty"`
}

// providerClaims is the RS256 identity-provider token shape.
type providerClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access,omitempty"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access,omitempty"`
	Region string   `json:"region,omitempty"`
	Acg    []string `json:"acg,omitempty"`
}

// HMACVerifier verifies legacy tokens against the static shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret []byte) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

var _ TokenVerifier = &HMACVerifier{}

func (v *HMACVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims := &legacyClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, mapTokenError(err)
	}

	// The legacy format declares the subject directly; no fallback chain.
	if claims.Subject == "" {
		return nil, mealcraft_errors.ErrMalformedToken
	}

	return &model.Identity{
		SubjectID:           claims.Subject,
		DisplayName:         claims.Subject,
		Roles:               NormalizeLegacyRoles(claims.Roles),
		Region:              claims.Region,
		AccessControlGroups: NormalizeAttributeList(claims.Acgs),
	}, nil
}

// RSAVerifier verifies provider tokens against the key ring, selecting the
// public key by the header's kid.
type RSAVerifier struct {
	keys *KeyRing
}

func NewRSAVerifier(keys *KeyRing) *RSAVerifier {
	return &RSAVerifier{keys: keys}
}

var _ TokenVerifier = &RSAVerifier{}

func (v *RSAVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims := &providerClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("%w: no kid in token header", mealcraft_errors.ErrUnknownSigningKey)
		}
		return v.keys.GetKey(ctx, kid)
	})
	if err != nil {
		return nil, mapTokenError(err)
	}

	// Subject precedence: preferred_username, then email, then sub.
	subject := claims.PreferredUsername
	if subject == "" {
		subject = claims.Email
	}
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return nil, mealcraft_errors.ErrMalformedToken
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = subject
	}

	resourceRoles := make(map[string][]string, len(claims.ResourceAccess))
	for client, access := range claims.ResourceAccess {
		resourceRoles[client] = access.Roles
	}

	return &model.Identity{
		SubjectID:           subject,
		DisplayName:         displayName,
		Roles:               NormalizeProviderRoles(claims.RealmAccess.Roles, resourceRoles),
		Region:              claims.Region,
		AccessControlGroups: claims.Acg,
	}, nil
}

// mapTokenError folds parser failures into the verification error taxonomy.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, mealcraft_errors.ErrKeyFetchFailure):
		return mealcraft_errors.ErrKeyFetchFailure
	case errors.Is(err, mealcraft_errors.ErrUnknownSigningKey):
		return mealcraft_errors.ErrUnknownSigningKey
	case errors.Is(err, jwt.ErrTokenExpired):
		return mealcraft_errors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return mealcraft_errors.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return mealcraft_errors.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		// exp is mandatory in both token formats.
		return mealcraft_errors.ErrTokenExpired
	default:
		return mealcraft_errors.ErrBadSignature
	}
}
