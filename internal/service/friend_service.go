// Package service holds the business rules: the friend request state machine,
// notification emission, statistics aggregation, tickets and the admin guard.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/core/metrics"
	"socialdesk/internal/domain"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
	"socialdesk/pkg/utils"
)

// FriendService runs the friend request state machine.
type FriendService struct {
	db       *gorm.DB
	identity domain.IdentityLookup
	bus      *event.Bus
	log      *zap.Logger
}

func NewFriendService(db *gorm.DB, identity domain.IdentityLookup, bus *event.Bus, l *zap.Logger) *FriendService {
	if l == nil {
		l = zap.NewNop()
	}
	return &FriendService{db: db, identity: identity, bus: bus, log: l.Named("friends")}
}

// Friend is an accepted friendship seen from one side.
type Friend struct {
	domain.UserProfile
	Since time.Time `json:"since"`
}

// SendFriendRequest creates a pending request from senderID to the user owning
// receiverEmail. Guards run in order: unknown receiver, self, existing
// friendship, pending duplicate. The receiver is notified in the same transaction.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, receiverEmail string) (req *domain.FriendRequest, err error) {
	defer func() { metrics.FriendRequests.WithLabelValues(metrics.Outcome(err)).Inc() }()

	email := strings.TrimSpace(receiverEmail)
	if senderID == "" || email == "" {
		return nil, domain.ErrInvalidInput
	}

	receiverID, found, err := s.identity.Resolve(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	if receiverID == senderID {
		return nil, domain.ErrSelfReference
	}
	sender, err := s.identity.Profile(ctx, senderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load sender: %w", err)
	}

	slot := 1
	req = &domain.FriendRequest{
		ID:          utils.NewID(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Status:      domain.RequestPending,
		PendingSlot: &slot,
		CreatedAt:   time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friends := repo.NewFriendRepo(tx)
		already, err := friends.FriendshipExists(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if already {
			return domain.ErrAlreadyFriends
		}
		dup, err := friends.PendingExists(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicateRequest
		}
		if err := friends.CreateRequest(ctx, req); err != nil {
			return err
		}
		return s.bus.Publish(ctx, tx, domain.RequestCreated{Request: *req, Sender: *sender})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			s.log.Error("send friend request failed", zap.String("sender", senderID), zap.Error(err))
			err = fmt.Errorf("send friend request: %w", err)
		}
		return nil, err
	}
	s.log.Info("friend request sent",
		zap.String("request", req.ID), zap.String("sender", senderID), zap.String("receiver", receiverID))
	return req, nil
}

// RespondToFriendRequest accepts or rejects a pending request addressed to
// responderID. Terminal requests yield ErrAlreadyResolved and change nothing.
func (s *FriendService) RespondToFriendRequest(ctx context.Context, responderID, requestID string, accept bool) (out *domain.FriendRequest, err error) {
	defer func() { metrics.FriendResponses.WithLabelValues(metrics.Outcome(err)).Inc() }()

	if responderID == "" || requestID == "" {
		return nil, domain.ErrInvalidInput
	}
	status := domain.RequestRejected
	if accept {
		status = domain.RequestAccepted
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friends := repo.NewFriendRepo(tx)
		req, err := friends.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.ReceiverID != responderID {
			return domain.ErrUnauthorized
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyResolved
		}

		now := time.Now().UTC()
		moved, err := friends.ResolveRequest(ctx, req.ID, status, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrAlreadyResolved
		}
		req.Status, req.PendingSlot, req.HandledAt = status, nil, &now
		out = req

		if !accept {
			return nil
		}
		// a reverse request accepted earlier may already have created the pair
		if _, err := friends.CreateFriendship(ctx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}
		return s.bus.Publish(ctx, tx, domain.FriendRequestAccepted{Request: *req})
	})
	if err != nil {
		if !domain.IsBusiness(err) {
			s.log.Error("respond to friend request failed", zap.String("request", requestID), zap.Error(err))
			err = fmt.Errorf("respond to friend request: %w", err)
		}
		return nil, err
	}
	s.log.Info("friend request resolved", zap.String("request", requestID), zap.String("status", string(status)))
	return out, nil
}

// ListFriends returns userID's friends, newest first.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	fs, err := repo.NewFriendRepo(s.db).ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	out := make([]Friend, 0, len(fs))
	for _, f := range fs {
		id := f.Other(userID)
		p, err := s.identity.Profile(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			p = &domain.UserProfile{ID: id}
		case err != nil:
			return nil, fmt.Errorf("load friend profile: %w", err)
		}
		out = append(out, Friend{UserProfile: *p, Since: f.CreatedAt})
	}
	return out, nil
}

func (s *FriendService) ListRequests(ctx context.Context, userID string, dir domain.RequestDirection, status domain.RequestStatus) ([]domain.FriendRequest, error) {
	if dir != domain.DirectionIncoming && dir != domain.DirectionOutgoing {
		return nil, domain.ErrInvalidInput
	}
	return repo.NewFriendRepo(s.db).ListRequests(ctx, userID, dir, status)
}
