// api/middleware/auth.go

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mealcraft/api/auth"
	"github.com/mealcraft/api/dao"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/util"
)

// Authentication verifies the bearer token, if any, and installs the
// resulting identity on the request context. Tokens are routed to the
// right verifier by signing algorithm: HS256 tokens to the legacy
// symmetric verifier and RS256 tokens to the provider verifier. Requests
// without an Authorization header and requests with an unparseable token
// pass through anonymously; a well-formed token that fails verification
// is rejected.
func Authentication(legacy *auth.HMACVerifier, provider *auth.RSAVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Identity is write-once per request.
		if util.GetIdentityFromContext(c) != nil {
			c.Next()
			return
		}

		rawToken, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		var verifier auth.TokenVerifier
		switch auth.Classify(rawToken) {
		case auth.ModeSymmetric:
			verifier = legacy
		case auth.ModeAsymmetric:
			verifier = provider
		default:
			logger.Debug("Dropping malformed bearer token", zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), rawToken)
		if err != nil {
			if errors.Is(err, mealcraft_errors.ErrMalformedToken) {
				logger.Debug("Dropping malformed bearer token", zap.String("path", c.Request.URL.Path))
				c.Next()
				return
			}
			util.RespondWithError(c, authErrorStatus(err), authErrorMessage(err), err)
			c.Abort()
			return
		}

		logger.Debug("Token verified",
			zap.String("subject", identity.SubjectID),
			zap.Strings("roles", identity.Roles))

		c.Set(util.IdentityContextKey, identity)
		// Propagate the acting user to the request context for the audit trail.
		ctx := dao.WithRequestingUser(c.Request.Context(), identity.SubjectID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetIdentityFromContext(c) == nil {
			util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose identity lacks an admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := util.GetIdentityFromContext(c)
		if identity == nil {
			util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			util.RespondWithError(c, http.StatusForbidden, "Admin role required", mealcraft_errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, mealcraft_errors.ErrKeyFetchFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, mealcraft_errors.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, mealcraft_errors.ErrBadSignature):
		return "Invalid token signature"
	case errors.Is(err, mealcraft_errors.ErrUnknownSigningKey):
		return "Unknown signing key"
	case errors.Is(err, mealcraft_errors.ErrKeyFetchFailure):
		return "Signing keys unavailable"
	default:
		return "Invalid token"
	}
}
