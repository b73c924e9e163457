package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"gnosis-influencer/internal/transport/http/response"
)

const apiKeyHeader = "X-API-KEY"

// RequireAPIKey gates the API behind the shared service key. Callers are
// other gnosis services, not end users.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(apiKeyHeader)
		if provided == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing X-API-KEY header")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			response.Error(c, 401, response.CodeUnauthorized, "invalid X-API-KEY")
			c.Abort()
			return
		}
		c.Next()
	}
}
