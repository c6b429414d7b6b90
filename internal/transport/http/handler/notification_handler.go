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

type NotificationHandler struct {
	svc *service.NotificationEmitter
	log *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationEmitter, l *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: l}
}

func (h *NotificationHandler) MountAPI(g *gin.RouterGroup) {
	type listQ struct {
		Limit int `form:"limit,default=50"`
	}
	ez.RegisterAction(ez.New(g, h.log), ez.Action[listQ, []domain.Notification]{
		Method: http.MethodGet,
		Path:   "/notifications",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQ) ([]domain.Notification, error) {
			return h.svc.ListNotifications(c.Request.Context(), c.GetString(mdw.KeyUserID), in.Limit)
		},
	})
}
