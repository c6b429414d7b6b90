package domain

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest 有向好友请求。PendingSlot 在 pending 时为 1，终态后置 NULL，
// 唯一索引 (sender_id, receiver_id, pending_slot) 保证同一方向最多一条 pending。
type FriendRequest struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	SenderID    string        `gorm:"size:36;not null;uniqueIndex:ux_friend_request_pending,priority:1;index" json:"senderId"`
	ReceiverID  string        `gorm:"size:36;not null;uniqueIndex:ux_friend_request_pending,priority:2;index" json:"receiverId"`
	PendingSlot *int          `gorm:"uniqueIndex:ux_friend_request_pending,priority:3" json:"-"`
	Status      RequestStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	HandledAt   *time.Time    `json:"handledAt,omitempty"`
}

func (FriendRequest) TableName() string { return "friend_requests" }

// Friendship 无序好友对，按 UserA < UserB 规范化存储
type Friendship struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserA     string    `gorm:"size:36;not null;uniqueIndex:ux_friendship_pair,priority:1" json:"userA"`
	UserB     string    `gorm:"size:36;not null;uniqueIndex:ux_friendship_pair,priority:2;index" json:"userB"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Friendship) TableName() string { return "friendships" }

// BeforeCreate keeps the pair canonical so (a,b) and (b,a) hit the same unique key.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.UserA == f.UserB {
		return ErrSelfReference
	}
	f.UserA, f.UserB = CanonicalPair(f.UserA, f.UserB)
	return nil
}

// CanonicalPair orders two user ids the way friendships are stored.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the member of the pair that is not userID.
func (f Friendship) Other(userID string) string {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}

type RequestDirection string

const (
	DirectionIncoming RequestDirection = "incoming"
	DirectionOutgoing RequestDirection = "outgoing"
)
