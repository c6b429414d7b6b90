package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"socialdesk/internal/core/auth"
	resp "socialdesk/internal/transport/http/response"
)

// AuthJWT requires a bearer token of requireScope; roles, when given, narrow it further.
func AuthJWT(j *auth.JWTer, requireScope string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		// 旧 token 没有 scope，按用户 token 处理
		scope := claims.Scope
		if scope == "" {
			scope = auth.ScopeUser
		}
		if requireScope != "" && scope != requireScope {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		if len(roles) > 0 && !contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyScope, scope)
		c.Next()
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
