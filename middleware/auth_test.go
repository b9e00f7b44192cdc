// api/middleware/auth_test.go
package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealcraft/api/auth"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/middleware"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

var testSecret = []byte("middleware-test-secret")

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger("../logging")
	os.Exit(m.Run())
}

func setupAuthRouter(t *testing.T, providerKeys map[string]*rsa.PublicKey) (*gin.Engine, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var list []map[string]string
		for kid, pub := range providerKeys {
			list = append(list, map[string]string{
				"kty": "RSA",
				"alg": "RS256",
				"kid": kid,
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"keys": list})
	}))

	legacy := auth.NewHMACVerifier(testSecret)
	provider := auth.NewRSAVerifier(auth.NewKeyRing(server.URL, 5*time.Second))

	router := gin.New()
	router.Use(middleware.Authentication(legacy, provider))
	router.GET("/whoami", func(c *gin.Context) {
		identity := util.GetIdentityFromContext(c)
		if identity == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, identity)
	})
	router.GET("/admin", middleware.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router, server.Close
}

func TestAuthenticationDispatch(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	router, cleanup := setupAuthRouter(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	defer cleanup()

	issuer := auth.NewIssuer(testSecret, time.Minute, "recipe")

	t.Run("no header is anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "anonymous")
	})

	t.Run("legacy token routes to symmetric verifier", func(t *testing.T) {
		token, err := issuer.IssueToken("chef@example.com", []string{"ROLE_USER"}, "EU", nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var identity model.Identity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
		assert.Equal(t, "chef@example.com", identity.SubjectID)
		assert.Equal(t, []string{"ROLE_USER"}, identity.Roles)
	})

	t.Run("provider token routes to asymmetric verifier", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"preferred_username": "provider-user@example.com",
			"exp":                time.Now().Add(time.Minute).Unix(),
			"realm_access":       map[string]interface{}{"roles": []string{"user"}},
		})
		tok.Header["kid"] = "kid-1"
		signed, err := tok.SignedString(key)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var identity model.Identity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
		assert.Equal(t, "provider-user@example.com", identity.SubjectID)
	})

	t.Run("garbage token falls back to anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "anonymous")
	})

	t.Run("expired legacy token is rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "late@example.com",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}).SignedString(testSecret)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("admin route rejects non-admin", func(t *testing.T) {
		token, err := issuer.IssueToken("chef@example.com", []string{"ROLE_USER"}, "", nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin route allows admin", func(t *testing.T) {
		token, err := issuer.IssueToken("root@example.com", []string{"ROLE_ADMIN"}, "", nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("jwks outage maps to service unavailable", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer down.Close()

		legacy := auth.NewHMACVerifier(testSecret)
		provider := auth.NewRSAVerifier(auth.NewKeyRing(down.URL, 5*time.Second))
		r := gin.New()
		r.Use(middleware.Authentication(legacy, provider))
		r.GET("/whoami", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"preferred_username": "provider-user@example.com",
			"exp":                time.Now().Add(time.Minute).Unix(),
		})
		tok.Header["kid"] = "kid-1"
		signed, err := tok.SignedString(key)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "unavailable")
	})

	t.Run("admin route rejects anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
