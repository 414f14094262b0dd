package middleware

import (
	"net/http"
	"slices"
	"strings"

	"birdfinder-server-go/src/configs"

	"github.com/gin-gonic/gin"
)

// CORS applies the configured cross-origin policy and answers preflight requests.
func CORS(config *configs.CORSConfig) gin.HandlerFunc {
	allowAll := slices.Contains(config.AllowedOrigins, "*")
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(config.AllowedOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
