package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"socialdesk/internal/domain"
)

type TicketRepo struct{ db *gorm.DB }

func NewTicketRepo(db *gorm.DB) *TicketRepo { return &TicketRepo{db: db} }

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TicketRepo) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetReplyIfUnset writes the reply only when none was stored yet; true means
// this call performed the unset → set transition.
func (r *TicketRepo) SetReplyIfUnset(ctx context.Context, id, reply string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("id = ? AND (reply = '' OR reply IS NULL)", id).
		Updates(map[string]any{"reply": reply, "replied_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *TicketRepo) UpdateReply(ctx context.Context, id, reply string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", id).Update("reply", reply)
	return res.RowsAffected == 1, res.Error
}

func (r *TicketRepo) SetStatus(ctx context.Context, id string, status domain.TicketStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected == 1, res.Error
}
