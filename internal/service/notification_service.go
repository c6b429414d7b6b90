package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/core/metrics"
	"socialdesk/internal/domain"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
	"socialdesk/pkg/utils"
)

const defaultNotificationLimit = 50

// NotificationEmitter turns domain events into notification records. It writes
// through the publishing transaction; delivery is somebody else's job.
type NotificationEmitter struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNotificationEmitter(db *gorm.DB, l *zap.Logger) *NotificationEmitter {
	if l == nil {
		l = zap.NewNop()
	}
	return &NotificationEmitter{db: db, log: l.Named("notify")}
}

func (n *NotificationEmitter) Register(b *event.Bus) {
	b.Subscribe(domain.RequestCreated{}, n.onRequestCreated)
	b.Subscribe(domain.FriendRequestAccepted{}, n.onRequestAccepted)
	b.Subscribe(domain.TicketReplyAdded{}, n.onTicketReply)
}

func (n *NotificationEmitter) onRequestCreated(ctx context.Context, tx *gorm.DB, ev domain.Event) error {
	e, ok := ev.(domain.RequestCreated)
	if !ok {
		return nil
	}
	return n.emit(ctx, tx, &domain.Notification{
		UserID:  e.Request.ReceiverID,
		Type:    domain.NotifyFriendRequest,
		Title:   "New friend request",
		Message: fmt.Sprintf("%s sent you a friend request", e.Sender.Label()),
		Data:    map[string]any{"request_id": e.Request.ID, "sender_id": e.Request.SenderID},
	})
}

func (n *NotificationEmitter) onRequestAccepted(ctx context.Context, tx *gorm.DB, ev domain.Event) error {
	e, ok := ev.(domain.FriendRequestAccepted)
	if !ok {
		return nil
	}
	return n.emit(ctx, tx, &domain.Notification{
		UserID:  e.Request.SenderID,
		Type:    domain.NotifyFriendAccepted,
		Title:   "Friend request accepted",
		Message: "Your friend request was accepted",
		Data:    map[string]any{"request_id": e.Request.ID, "receiver_id": e.Request.ReceiverID},
	})
}

func (n *NotificationEmitter) onTicketReply(ctx context.Context, tx *gorm.DB, ev domain.Event) error {
	e, ok := ev.(domain.TicketReplyAdded)
	if !ok {
		return nil
	}
	if e.OwnerID == "" {
		n.log.Warn("ticket owner not resolvable, reply notification skipped", zap.String("ticket", e.Ticket.ID))
		return nil
	}
	return n.emit(ctx, tx, &domain.Notification{
		UserID:  e.OwnerID,
		Type:    domain.NotifyTicketReply,
		Title:   "Your ticket has a reply",
		Message: fmt.Sprintf("Support replied to %q", e.Ticket.Title),
		Data:    map[string]any{"ticket_id": e.Ticket.ID, "status": string(e.Ticket.Status)},
	})
}

func (n *NotificationEmitter) emit(ctx context.Context, tx *gorm.DB, rec *domain.Notification) error {
	rec.ID = utils.NewID()
	if err := repo.NewNotificationRepo(tx).Create(ctx, rec); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	metrics.Notifications.WithLabelValues(string(rec.Type)).Inc()
	n.log.Debug("notification written", zap.String("user", rec.UserID), zap.String("type", string(rec.Type)))
	return nil
}

// ListNotifications returns userID's newest notifications.
func (n *NotificationEmitter) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return repo.NewNotificationRepo(n.db).ListByUser(ctx, userID, limit)
}
