package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialdesk/internal/core/database"
	"socialdesk/internal/domain"
	"socialdesk/pkg/utils"
)

// FriendRepo covers friendships and friend requests. Build it on a transaction
// handle when the caller needs a unit of work.
type FriendRepo struct{ db *gorm.DB }

func NewFriendRepo(db *gorm.DB) *FriendRepo { return &FriendRepo{db: db} }

func (r *FriendRepo) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	ua, ub := domain.CanonicalPair(a, b)
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Friendship{}).
		Where("user_a = ? AND user_b = ?", ua, ub).Count(&n).Error
	return n > 0, err
}

// CreateFriendship inserts the canonical pair; created is false when it already existed.
func (r *FriendRepo) CreateFriendship(ctx context.Context, a, b string) (bool, error) {
	f := domain.Friendship{ID: utils.NewID(), UserA: a, UserB: b}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_a"}, {Name: "user_b"}}, DoNothing: true}).
		Create(&f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *FriendRepo) ListFriendships(ctx context.Context, userID string) ([]domain.Friendship, error) {
	var fs []domain.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at DESC").Find(&fs).Error
	return fs, err
}

func (r *FriendRepo) PendingExists(ctx context.Context, senderID, receiverID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, domain.RequestPending).
		Count(&n).Error
	return n > 0, err
}

// CreateRequest inserts a pending request. Losing the pending-uniqueness race
// surfaces as domain.ErrDuplicateRequest.
func (r *FriendRepo) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if database.IsDuplicateKey(err) {
		return domain.ErrDuplicateRequest
	}
	return err
}

func (r *FriendRepo) GetRequest(ctx context.Context, id string) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ResolveRequest moves a pending request to a terminal status. It reports false
// when the row was no longer pending, so each request transitions at most once.
func (r *FriendRepo) ResolveRequest(ctx context.Context, id string, status domain.RequestStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.FriendRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(map[string]any{"status": status, "pending_slot": nil, "handled_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *FriendRepo) ListRequests(ctx context.Context, userID string, dir domain.RequestDirection, status domain.RequestStatus) ([]domain.FriendRequest, error) {
	q := r.db.WithContext(ctx).Model(&domain.FriendRequest{})
	if dir == domain.DirectionOutgoing {
		q = q.Where("sender_id = ?", userID)
	} else {
		q = q.Where("receiver_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.FriendRequest
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
