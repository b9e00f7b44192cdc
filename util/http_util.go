// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
)

// IdentityContextKey is where the authentication middleware installs the
// verified identity on the request context.
const IdentityContextKey = "identity"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetIdentityFromContext returns the verified identity for the request, or
// nil when the request is anonymous.
func GetIdentityFromContext(c *gin.Context) *model.Identity {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}
