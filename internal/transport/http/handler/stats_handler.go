package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialdesk/internal/domain"
	"socialdesk/internal/service"
	"socialdesk/internal/transport/http/ez"
)

type StatsHandler struct {
	svc *service.StatsService
	log *zap.Logger
}

func NewStatsHandler(svc *service.StatsService, l *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: l}
}

func (h *StatsHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.StatisticsSnapshot]{
		Method: http.MethodGet,
		Path:   "/statistics",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.StatisticsSnapshot, error) {
			return h.svc.GetStatistics(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.StatisticsSnapshot]{
		Method: http.MethodPost,
		Path:   "/statistics/refresh",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.StatisticsSnapshot, error) {
			return h.svc.Recompute(c.Request.Context())
		},
	})
}
