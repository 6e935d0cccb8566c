package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity requires the caller identity header "sub" set by the fronting
// auth layer. Authentication itself (login, social flows) happens upstream,
// this service only consumes the resolved user id.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.Request.Header.Get("sub")
		if sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing identity header",
			})
			c.Abort()
			return
		}

		c.Set("sub", sub)
		c.Next()
	}
}
