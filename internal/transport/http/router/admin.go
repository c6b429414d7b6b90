package router

import (
	"github.com/gin-gonic/gin"

	"socialdesk/internal/core/auth"
	mdw "socialdesk/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1; everything but login needs an admin-scoped token.
func NewAdminEngine(d Deps, jwter *auth.JWTer) *gin.Engine {
	r := newEngine("admin", d)

	public := r.Group("/admin/v1")
	guarded := r.Group("/admin/v1")
	guarded.Use(mdw.AuthJWT(jwter, auth.ScopeAdmin))
	d.Registry.MountAdmin(public, guarded)
	return r
}
