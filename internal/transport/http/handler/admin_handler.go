package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialdesk/internal/core/auth"
	"socialdesk/internal/domain"
	"socialdesk/internal/service"
	"socialdesk/internal/transport/http/ez"
	mdw "socialdesk/internal/transport/http/middleware"
)

type AdminHandler struct {
	svc   *service.AdminService
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, jwter *auth.JWTer, l *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, jwter: jwter, log: l}
}

func (h *AdminHandler) Priority() int { return 0 }

// MountPublic mounts login; it must sit outside the JWT-guarded group.
func (h *AdminHandler) MountPublic(g *gin.RouterGroup) {
	type loginIn struct {
		ID       string `json:"id"       binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string              `json:"token"`
		Admin domain.AdminProfile `json:"admin"`
	}
	ez.RegisterAction(ez.New(g, h.log), ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			p, err := h.svc.Authenticate(c.Request.Context(), in.ID, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			tok, err := h.jwter.Issue(p.ID, p.Role, auth.ScopeAdmin)
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, Admin: p}, nil
		},
	})
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type changeIn struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	ez.RegisterAction(e, ez.Action[changeIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/password",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *changeIn) (gin.H, error) {
			id := c.GetString(mdw.KeyUserID)
			if err := h.svc.ChangePassword(c.Request.Context(), id, in.OldPassword, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	type resetIn struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	ez.RegisterAction(e, ez.Action[resetIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/password",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *resetIn) (gin.H, error) {
			target := c.Param("id")
			if err := h.svc.ResetPassword(c.Request.Context(), target, in.Password, c.GetString(mdw.KeyUserID)); err != nil {
				return nil, err
			}
			return gin.H{"id": target}, nil
		},
	})
}
