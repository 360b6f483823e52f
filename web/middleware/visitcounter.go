package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VisitCounterMiddleware invokes count for every GET of one of the given
// page paths. API calls and assets are never counted.
func VisitCounterMiddleware(count func(), paths ...string) gin.HandlerFunc {
	counted := make(map[string]bool, len(paths))
	for _, path := range paths {
		counted[path] = true
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && counted[c.Request.URL.Path] {
			count()
		}
		c.Next()
	}
}
