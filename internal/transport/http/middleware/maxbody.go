package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "socialdesk/internal/transport/http/response"
)

// MaxBodyBytes caps the request body; oversized bodies fail binding.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "request body too large"))
			return
		}
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
