// api/auth/issuer.go
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints legacy-format HS256 tokens. Provider-issued tokens are never
// minted here; this exists for the local login flow and for bridging
// provider identities to consumers that only speak the legacy format.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	realm  string
}

func NewIssuer(secret []byte, ttl time.Duration, realm string) *Issuer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Issuer{secret: secret, ttl: ttl, realm: realm}
}

// IssueToken signs a legacy token for the given subject. Roles and ACGs are
// carried as comma-joined claims; empty attributes are omitted entirely.
func (i *Issuer) IssueToken(email string, roles []string, region string, acgs []string) (string, error) {
	now := time.Now()
	claims := legacyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if len(roles) > 0 {
		claims.Roles = strings.Join(roles, ",")
	}
	if region != "" {
		claims.Region = region
	}
	if len(acgs) > 0 {
		claims.Acgs = strings.Join(acgs, ",")
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// IssueFromProviderRoles signs a legacy token for a provider-authenticated
// subject. The provider's bookkeeping roles are stripped so legacy consumers
// only see business roles.
func (i *Issuer) IssueFromProviderRoles(email string, providerRoles []string, region string, acgs []string) (string, error) {
	return i.IssueToken(email, normalizeRoleSet(FilterDefaultRoles(providerRoles, i.realm)), region, acgs)
}
