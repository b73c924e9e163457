package middleware

import (
	"github.com/gin-gonic/gin"

	"gnosis-influencer/internal/pkg/correlation"
)

// CorrelationID makes sure every request carries a correlation id: the
// inbound header is reused when present, otherwise a fresh one is
// minted. The id rides the request context into every outbound
// collaborator call and is echoed back to the caller.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlation.Header)
		if id == "" {
			id = correlation.NewID()
		}
		c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), id))
		c.Header(correlation.Header, id)
		c.Next()
	}
}
