package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
)

// APIKeyMiddleware authenticates requests with a sandbox bearer key
// (Authorization: Bearer pk_test_...). Keys are compared in constant
// time. The matched key is stored in context as "api_key" for
// per-key rate limiting.
func APIKeyMiddleware(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		provided := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if provided == "" || header == provided {
			httpapi.AbortFail(c, http.StatusUnauthorized, httpapi.CodeUnauthorized,
				"missing bearer API key", nil)
			return
		}

		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				c.Set("api_key", key)
				c.Next()
				return
			}
		}

		httpapi.AbortFail(c, http.StatusUnauthorized, httpapi.CodeUnauthorized,
			"invalid API key", nil)
	}
}
