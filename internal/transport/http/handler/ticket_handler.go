package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialdesk/internal/domain"
	"socialdesk/internal/service"
	"socialdesk/internal/transport/http/ez"
)

// TicketHandler: 用户端提交工单，管理端回复/改状态
type TicketHandler struct {
	svc *service.TicketService
	log *zap.Logger
}

func NewTicketHandler(svc *service.TicketService, l *zap.Logger) *TicketHandler {
	return &TicketHandler{svc: svc, log: l}
}

func (h *TicketHandler) MountAPI(g *gin.RouterGroup) {
	type createIn struct {
		Email   string `json:"email"   binding:"required,email"`
		Title   string `json:"title"   binding:"required,max=191"`
		Content string `json:"content" binding:"max=10000"`
	}
	ez.RegisterAction(ez.New(g, h.log), ez.Action[createIn, *domain.Ticket]{
		Method: http.MethodPost,
		Path:   "/tickets",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *createIn) (*domain.Ticket, error) {
			return h.svc.CreateTicket(c.Request.Context(), in.Email, in.Title, in.Content)
		},
	})
}

func (h *TicketHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type replyIn struct {
		Reply string `json:"reply" binding:"required,max=2000"`
	}
	ez.RegisterAction(e, ez.Action[replyIn, *domain.Ticket]{
		Method: http.MethodPost,
		Path:   "/tickets/:id/reply",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *replyIn) (*domain.Ticket, error) {
			return h.svc.ReplyToTicket(c.Request.Context(), c.Param("id"), in.Reply)
		},
	})

	type statusIn struct {
		Status string `json:"status" binding:"required,oneof=pending in_progress resolved"`
	}
	ez.RegisterAction(e, ez.Action[statusIn, *domain.Ticket]{
		Method: http.MethodPost,
		Path:   "/tickets/:id/status",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *statusIn) (*domain.Ticket, error) {
			return h.svc.SetTicketStatus(c.Request.Context(), c.Param("id"), domain.TicketStatus(in.Status))
		},
	})
}
