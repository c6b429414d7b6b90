package router

import (
	"github.com/gin-gonic/gin"

	"socialdesk/internal/core/auth"
	mdw "socialdesk/internal/transport/http/middleware"
)

// NewAPIEngine serves /api/v1 for end users holding a provider-issued token.
func NewAPIEngine(d Deps, jwter *auth.JWTer) *gin.Engine {
	r := newEngine("api", d)

	api := r.Group("/api/v1")
	api.Use(mdw.AuthJWT(jwter, auth.ScopeUser))
	d.Registry.MountAPI(api)
	return r
}
