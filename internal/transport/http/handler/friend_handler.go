// Package handler mounts the service operations as ez actions.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialdesk/internal/domain"
	"socialdesk/internal/service"
	"socialdesk/internal/transport/http/ez"
	mdw "socialdesk/internal/transport/http/middleware"
)

type FriendHandler struct {
	svc *service.FriendService
	log *zap.Logger
}

func NewFriendHandler(svc *service.FriendService, l *zap.Logger) *FriendHandler {
	return &FriendHandler{svc: svc, log: l}
}

func (h *FriendHandler) Priority() int { return 10 }

func (h *FriendHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type sendIn struct {
		Email string `json:"email" binding:"required,email"`
	}
	ez.RegisterAction(e, ez.Action[sendIn, *domain.FriendRequest]{
		Method: http.MethodPost,
		Path:   "/friends/requests",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *sendIn) (*domain.FriendRequest, error) {
			return h.svc.SendFriendRequest(c.Request.Context(), c.GetString(mdw.KeyUserID), in.Email)
		},
	})

	type respondIn struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	ez.RegisterAction(e, ez.Action[respondIn, *domain.FriendRequest]{
		Method: http.MethodPost,
		Path:   "/friends/requests/:id/respond",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *respondIn) (*domain.FriendRequest, error) {
			return h.svc.RespondToFriendRequest(c.Request.Context(), c.GetString(mdw.KeyUserID), c.Param("id"), *in.Accept)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.Friend]{
		Method: http.MethodGet,
		Path:   "/friends",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.Friend, error) {
			return h.svc.ListFriends(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})

	type listQ struct {
		Direction string `form:"direction,default=incoming"`
		Status    string `form:"status"` // 为空表示全部
	}
	ez.RegisterAction(e, ez.Action[listQ, []domain.FriendRequest]{
		Method: http.MethodGet,
		Path:   "/friends/requests",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQ) ([]domain.FriendRequest, error) {
			return h.svc.ListRequests(c.Request.Context(), c.GetString(mdw.KeyUserID),
				domain.RequestDirection(in.Direction), domain.RequestStatus(in.Status))
		},
	})
}
